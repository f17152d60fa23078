package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carelink/internal/client/auth"
	"github.com/iudanet/carelink/internal/client/config"
	"github.com/iudanet/carelink/internal/client/iocli"
	"github.com/iudanet/carelink/internal/crypto"
	"github.com/iudanet/carelink/pkg/api"
)

// testIO собирает вывод команд в буфер и отдает заранее заданный ввод
type testIO struct {
	*iocli.IOMock
	out *bytes.Buffer
	mu  *sync.Mutex
}

func newTestIO(inputs []string, passwords []string) *testIO {
	tio := &testIO{out: &bytes.Buffer{}, mu: &sync.Mutex{}}
	tio.IOMock = &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			tio.mu.Lock()
			defer tio.mu.Unlock()
			fmt.Fprintln(tio.out, a...)
		},
		PrintfFunc: func(format string, a ...any) {
			tio.mu.Lock()
			defer tio.mu.Unlock()
			fmt.Fprintf(tio.out, format, a...)
		},
		ReadInputFunc: func(prompt string) (string, error) {
			if len(inputs) == 0 {
				return "", io.EOF
			}
			v := inputs[0]
			inputs = inputs[1:]
			return v, nil
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			if len(passwords) == 0 {
				return "", io.EOF
			}
			v := passwords[0]
			passwords = passwords[1:]
			return v, nil
		},
		WriteFunc: func(p []byte) (int, error) {
			tio.mu.Lock()
			defer tio.mu.Unlock()
			return tio.out.Write(p)
		},
	}
	return tio
}

func (t *testIO) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.String()
}

func newSessionMock() *SessionMock {
	return &SessionMock{
		StartFunc: func(ctx context.Context) {},
		StopFunc:  func() {},
	}
}

type testEnv struct {
	cli       *Cli
	io        *testIO
	session   *SessionMock
	registrar *RegistrarMock
	closed    int
	opened    *config.Config
}

func newTestEnv(t *testing.T, tio *testIO) *testEnv {
	t.Helper()

	env := &testEnv{
		io:        tio,
		session:   newSessionMock(),
		registrar: &RegistrarMock{},
	}
	open := func(ctx context.Context, cfg *config.Config, onLogout auth.LogoutHandler, logger *slog.Logger) (*Env, error) {
		env.opened = cfg
		return &Env{
			Session:   env.session,
			Registrar: env.registrar,
			Close: func() error {
				env.closed++
				return nil
			},
		}, nil
	}
	env.cli = New(tio, open, BuildInfo{Version: "1.4.0", BuildDate: "2026-10-01", GitCommit: "abc1234"})
	env.cli.logOut = io.Discard
	return env
}

func (e *testEnv) run(args ...string) error {
	return e.cli.Execute(context.Background(), append([]string{"--ephemeral"}, args...))
}

// TestReadSecret_FromEnvVar проверяет чтение пароля из переменной окружения
func TestReadSecret_FromEnvVar(t *testing.T) {
	t.Setenv(EnvPassword, "test_env_password_123")
	c := &Cli{io: newTestIO(nil, nil)}

	secret, err := c.readSecret(EnvPassword, "", "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "test_env_password_123", secret)
}

// TestReadSecret_FromFile проверяет чтение пароля из файла
func TestReadSecret_FromFile(t *testing.T) {
	t.Setenv(EnvPassword, "")
	c := &Cli{io: newTestIO(nil, nil)}

	path := filepath.Join(t.TempDir(), "password.txt")
	require.NoError(t, os.WriteFile(path, []byte("test_file_password_456\n"), 0o600))

	secret, err := c.readSecret(EnvPassword, path, "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "test_file_password_456", secret)
}

// TestReadSecret_Priority проверяет приоритет: env > файл > ввод
func TestReadSecret_Priority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password.txt")
	require.NoError(t, os.WriteFile(path, []byte("from_file"), 0o600))

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv(EnvPassword, "from_env")
		tio := newTestIO(nil, []string{"from_prompt"})
		c := &Cli{io: tio}

		secret, err := c.readSecret(EnvPassword, path, "Password: ")
		require.NoError(t, err)
		assert.Equal(t, "from_env", secret)
		assert.Empty(t, tio.ReadPasswordCalls())
	})

	t.Run("file wins over prompt", func(t *testing.T) {
		t.Setenv(EnvPassword, "")
		tio := newTestIO(nil, []string{"from_prompt"})
		c := &Cli{io: tio}

		secret, err := c.readSecret(EnvPassword, path, "Password: ")
		require.NoError(t, err)
		assert.Equal(t, "from_file", secret)
		assert.Empty(t, tio.ReadPasswordCalls())
	})

	t.Run("prompt as last resort", func(t *testing.T) {
		t.Setenv(EnvPassword, "")
		tio := newTestIO(nil, []string{"from_prompt"})
		c := &Cli{io: tio}

		secret, err := c.readSecret(EnvPassword, "", "Password: ")
		require.NoError(t, err)
		assert.Equal(t, "from_prompt", secret)
		require.Len(t, tio.ReadPasswordCalls(), 1)
		assert.Equal(t, "Password: ", tio.ReadPasswordCalls()[0].Prompt)
	})
}

func TestReadSecret_Errors(t *testing.T) {
	t.Setenv(EnvPassword, "")

	t.Run("missing file", func(t *testing.T) {
		c := &Cli{io: newTestIO(nil, nil)}
		_, err := c.readSecret(EnvPassword, filepath.Join(t.TempDir(), "nope.txt"), "Password: ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read password file")
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

		c := &Cli{io: newTestIO(nil, nil)}
		_, err := c.readSecret(EnvPassword, path, "Password: ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password file is empty")
	})

	t.Run("empty prompt", func(t *testing.T) {
		c := &Cli{io: newTestIO(nil, []string{""})}
		_, err := c.readSecret(EnvPassword, "", "Password: ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password cannot be empty")
	})
}

func TestLogin(t *testing.T) {
	t.Setenv(EnvPassword, "")
	expires := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	env := newTestEnv(t, newTestIO([]string{"nurse_anna"}, []string{"correct-horse-battery"}))
	env.session.LoginWithPasswordFunc = func(ctx context.Context, username, password string) error {
		return nil
	}
	env.session.TokenDebugInfoFunc = func(ctx context.Context) (*auth.TokenDebugInfo, error) {
		return &auth.TokenDebugInfo{Authenticated: true, AccessExpiresAt: expires}, nil
	}

	require.NoError(t, env.run("login"))

	calls := env.session.LoginWithPasswordCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "nurse_anna", calls[0].Username)
	assert.Equal(t, "correct-horse-battery", calls[0].Password)

	out := env.io.String()
	assert.Contains(t, out, "Login successful")
	assert.Contains(t, out, "2026-10-17 12:00:00 UTC")
	assert.Equal(t, 1, env.closed)
}

func TestLogin_UsernameFlagAndFailure(t *testing.T) {
	t.Setenv(EnvPassword, "from_env_password")

	env := newTestEnv(t, newTestIO(nil, nil))
	env.session.LoginWithPasswordFunc = func(ctx context.Context, username, password string) error {
		return fmt.Errorf("%w: invalid credentials", auth.ErrRequestFailed)
	}

	err := env.run("login", "-u", "nurse_anna")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrRequestFailed)
	assert.Contains(t, err.Error(), "login failed")

	assert.Empty(t, env.io.ReadInputCalls())
	require.Len(t, env.session.LoginWithPasswordCalls(), 1)
	assert.Equal(t, "from_env_password", env.session.LoginWithPasswordCalls()[0].Password)
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, newTestIO([]string{"nurse_anna"}, []string{"correct-horse-battery", "correct-horse-battery"}))
		env.registrar.RegisterFunc = func(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
			return &api.RegisterResponse{UserID: "u-42"}, nil
		}

		require.NoError(t, env.run("register"))

		calls := env.registrar.RegisterCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "nurse_anna", calls[0].Req.Username)
		assert.Equal(t, "correct-horse-battery", calls[0].Req.Password)
		assert.Contains(t, env.io.String(), "User ID: u-42")
	})

	t.Run("passwords do not match", func(t *testing.T) {
		env := newTestEnv(t, newTestIO([]string{"nurse_anna"}, []string{"correct-horse-battery", "correct-horse-batterx"}))

		err := env.run("register")
		assert.ErrorIs(t, err, ErrPasswordsDoNotMatch)
		assert.Empty(t, env.registrar.RegisterCalls())
	})

	t.Run("short password", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, []string{"short"}))

		err := env.run("register", "--username", "nurse_anna")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid password")
		assert.Empty(t, env.registrar.RegisterCalls())
	})

	t.Run("invalid username", func(t *testing.T) {
		env := newTestEnv(t, newTestIO([]string{"a"}, nil))

		err := env.run("register")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid username")
		assert.Empty(t, env.io.ReadPasswordCalls())
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, newTestIO(nil, nil))
	env.session.LogoutFunc = func(ctx context.Context) error {
		return nil
	}

	require.NoError(t, env.run("logout"))
	assert.Len(t, env.session.LogoutCalls(), 1)
	assert.Contains(t, env.io.String(), "Logout successful")
}

func TestStatus(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.TokenDebugInfoFunc = func(ctx context.Context) (*auth.TokenDebugInfo, error) {
			return &auth.TokenDebugInfo{}, nil
		}

		require.NoError(t, env.run("status"))
		out := env.io.String()
		assert.Contains(t, out, "Status: Not authenticated")
		assert.Contains(t, out, "carelink login")
	})

	t.Run("authenticated and expiring", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.TokenDebugInfoFunc = func(ctx context.Context) (*auth.TokenDebugInfo, error) {
			return &auth.TokenDebugInfo{
				Authenticated:    true,
				UserID:           "u-42",
				AccessExpiresAt:  time.Now().Add(30 * time.Second),
				AccessExpiring:   true,
				RefreshExpiresAt: time.Now().Add(24 * time.Hour),
			}, nil
		}

		require.NoError(t, env.run("status"))
		out := env.io.String()
		assert.Contains(t, out, "Status: Authenticated")
		assert.Contains(t, out, "User ID: u-42")
		assert.Contains(t, out, "expiring")
		assert.Contains(t, out, "Refresh token expires")
	})

	t.Run("undecryptable store", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.TokenDebugInfoFunc = func(ctx context.Context) (*auth.TokenDebugInfo, error) {
			return nil, fmt.Errorf("failed to read tokens: %w", crypto.ErrDecrypt)
		}

		err := env.run("status")
		require.Error(t, err)
		assert.ErrorIs(t, err, crypto.ErrDecrypt)
		assert.Contains(t, err.Error(), "--passphrase")
	})
}

func TestWhoami(t *testing.T) {
	t.Run("prints profile", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.DoJSONFunc = func(ctx context.Context, method, path string, in, out any) error {
			assert.Equal(t, http.MethodGet, method)
			assert.Equal(t, api.PathProfile, path)
			profile, ok := out.(*api.ProfileResponse)
			require.True(t, ok)
			profile.UserID = "u-42"
			profile.Username = "nurse_anna"
			return nil
		}

		require.NoError(t, env.run("whoami"))
		out := env.io.String()
		assert.Contains(t, out, "Username: nurse_anna")
		assert.Contains(t, out, "User ID: u-42")
	})

	t.Run("no session", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.DoJSONFunc = func(ctx context.Context, method, path string, in, out any) error {
			return auth.ErrNoRefreshToken
		}

		assert.ErrorIs(t, env.run("whoami"), ErrNotAuthenticated)
	})
}

func TestRequest(t *testing.T) {
	response := func(code int, body string) *http.Response {
		return &http.Response{
			Proto:      "HTTP/1.1",
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Body:       io.NopCloser(strings.NewReader(body)),
		}
	}

	t.Run("sends body and headers", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.DoFunc = func(ctx context.Context, req auth.Request) (*http.Response, error) {
			return response(http.StatusCreated, `{"id":"r-1"}`), nil
		}

		err := env.run("request", "post", "/records/", "--data", `{"note":"bp 120/80"}`, "-H", "X-Trace: abc")
		require.NoError(t, err)

		calls := env.session.DoCalls()
		require.Len(t, calls, 1)
		req := calls[0].Req
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/records/", req.URL)
		assert.JSONEq(t, `{"note":"bp 120/80"}`, string(req.Body))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, "abc", req.Header.Get("X-Trace"))

		out := env.io.String()
		assert.Contains(t, out, "HTTP/1.1 201 Created")
		assert.Contains(t, out, `{"id":"r-1"}`)
	})

	t.Run("error status", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.DoFunc = func(ctx context.Context, req auth.Request) (*http.Response, error) {
			return response(http.StatusUnauthorized, `{"detail":"Unauthorized"}`), nil
		}

		err := env.run("request", "GET", "/account/profile/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, env.io.String(), "Unauthorized")
	})

	t.Run("bad header", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))

		err := env.run("request", "GET", "/x", "-H", "no-colon")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid header")
		assert.Empty(t, env.session.DoCalls())
	})

	t.Run("wrong arg count", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		assert.Error(t, env.run("request", "GET"))
	})
}

func TestWatch(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.IsAuthenticatedFunc = func(ctx context.Context) (bool, error) {
			return false, nil
		}

		assert.ErrorIs(t, env.run("watch"), ErrNotAuthenticated)
		assert.Empty(t, env.session.StartCalls())
	})

	t.Run("ends with session", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.IsAuthenticatedFunc = func(ctx context.Context) (bool, error) {
			return true, nil
		}
		env.session.TokenDebugInfoFunc = func(ctx context.Context) (*auth.TokenDebugInfo, error) {
			return &auth.TokenDebugInfo{Authenticated: true, AccessExpiresAt: time.Now().Add(time.Minute)}, nil
		}
		// Монитор исчерпал попытки и завершил сессию
		env.session.StartFunc = func(ctx context.Context) {
			go env.cli.onSessionEnded(ctx, auth.ErrRenewalExhausted)
		}

		err := env.run("watch", "--print-every", "1h")
		assert.ErrorIs(t, err, ErrSessionEnded)
		assert.ErrorIs(t, err, auth.ErrRenewalExhausted)
		assert.Len(t, env.session.StartCalls(), 1)
		assert.NotEmpty(t, env.session.StopCalls())
		assert.Contains(t, env.io.String(), "Session ended")
	})

	t.Run("stops on cancel", func(t *testing.T) {
		env := newTestEnv(t, newTestIO(nil, nil))
		env.session.IsAuthenticatedFunc = func(ctx context.Context) (bool, error) {
			return true, nil
		}
		env.session.TokenDebugInfoFunc = func(ctx context.Context) (*auth.TokenDebugInfo, error) {
			return &auth.TokenDebugInfo{Authenticated: true, AccessExpiresAt: time.Now().Add(time.Minute)}, nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		env.session.StartFunc = func(context.Context) {
			cancel()
		}

		err := env.cli.Execute(ctx, []string{"--ephemeral", "watch"})
		require.NoError(t, err)
		assert.Contains(t, env.io.String(), "Stopped.")
	})
}

func TestOnSessionEnded_ExplicitLogoutIsSilent(t *testing.T) {
	env := newTestEnv(t, newTestIO(nil, nil))

	env.cli.onSessionEnded(context.Background(), nil)

	assert.Empty(t, env.io.String())
	select {
	case <-env.cli.ended:
		t.Fatal("explicit logout must not signal a forced end")
	default:
	}
}

func TestVersion_SkipsSetup(t *testing.T) {
	env := newTestEnv(t, newTestIO(nil, nil))

	require.NoError(t, env.cli.Execute(context.Background(), []string{"version"}))

	assert.Nil(t, env.opened)
	out := env.io.String()
	assert.Contains(t, out, "CareLink Client")
	assert.Contains(t, out, "1.4.0")
	assert.Contains(t, out, "abc1234")
}

func TestSetup_PassesConfig(t *testing.T) {
	env := newTestEnv(t, newTestIO(nil, nil))
	env.session.LogoutFunc = func(ctx context.Context) error { return nil }

	err := env.cli.Execute(context.Background(), []string{
		"--server", "http://care.example:9000/", "--max-retries", "5", "--ephemeral", "logout",
	})
	require.NoError(t, err)

	require.NotNil(t, env.opened)
	assert.Equal(t, "http://care.example:9000", env.opened.Server)
	assert.Equal(t, 5, env.opened.MaxRetries)
	assert.True(t, env.opened.Ephemeral)
}

func TestSetup_OpenError(t *testing.T) {
	tio := newTestIO(nil, nil)
	c := New(tio, func(context.Context, *config.Config, auth.LogoutHandler, *slog.Logger) (*Env, error) {
		return nil, errors.New("database is locked")
	}, BuildInfo{})
	c.logOut = io.Discard

	err := c.Execute(context.Background(), []string{"status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestOpenEnv_EncryptedStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "session.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		Server:          "http://localhost:8000",
		DBPath:          dbPath,
		Passphrase:      "ward-7-night-shift",
		RenewThreshold:  auth.DefaultRenewThreshold,
		RenewTimeout:    auth.DefaultRenewTimeout,
		MonitorInterval: auth.DefaultMonitorInterval,
		MaxRetries:      auth.DefaultMaxRetries,
	}

	env, err := OpenEnv(ctx, cfg, nil, logger)
	require.NoError(t, err)

	ok, err := env.Session.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, env.Close())

	// Повторное открытие с той же passphrase использует сохраненную соль
	env, err = OpenEnv(ctx, cfg, nil, logger)
	require.NoError(t, err)
	require.NoError(t, env.Close())
}

func TestOpenEnv_Ephemeral(t *testing.T) {
	cfg := &config.Config{
		Server:     "http://localhost:8000",
		Ephemeral:  true,
		MaxRetries: 1,
	}

	env, err := OpenEnv(context.Background(), cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.NotNil(t, env.Session)
	assert.NotNil(t, env.Registrar)
	assert.NoError(t, env.Close())
}
