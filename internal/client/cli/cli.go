// Package cli implements the carelink command line client on top of the
// session gateway.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/carelink/internal/client/api"
	"github.com/iudanet/carelink/internal/client/auth"
	"github.com/iudanet/carelink/internal/client/config"
	"github.com/iudanet/carelink/internal/client/iocli"
	"github.com/iudanet/carelink/internal/client/storage"
	"github.com/iudanet/carelink/internal/client/storage/boltdb"
	"github.com/iudanet/carelink/internal/client/storage/memory"
	"github.com/iudanet/carelink/internal/crypto"
	pkgapi "github.com/iudanet/carelink/pkg/api"
)

//go:generate moq -out session_mock.go . Session Registrar

// Session - операции gateway, которые использует CLI. *auth.Gateway реализует его.
type Session interface {
	LoginWithPassword(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) (bool, error)
	TokenDebugInfo(ctx context.Context) (*auth.TokenDebugInfo, error)
	Do(ctx context.Context, req auth.Request) (*http.Response, error)
	DoJSON(ctx context.Context, method, path string, in, out any) error
	Start(ctx context.Context)
	Stop()
}

// Registrar регистрирует новых пользователей. *api.Client реализует его.
type Registrar interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
}

// Env - открытая сессия и ресурсы, которые нужно закрыть
type Env struct {
	Session   Session
	Registrar Registrar
	Close     func() error
}

// Opener открывает хранилище и собирает gateway по настройкам
type Opener func(ctx context.Context, cfg *config.Config, onLogout auth.LogoutHandler, logger *slog.Logger) (*Env, error)

// BuildInfo - версия, вшитая через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Cli - состояние одного запуска команды
type Cli struct {
	io        iocli.IO
	open      Opener
	build     BuildInfo
	cfg       *config.Config
	logger    *slog.Logger
	session   Session
	registrar Registrar
	closeEnv  func() error
	ended     chan error
	logOut    io.Writer
}

// New создает CLI. open == nil означает OpenEnv.
func New(stdio iocli.IO, open Opener, build BuildInfo) *Cli {
	if open == nil {
		open = OpenEnv
	}
	return &Cli{
		io:     stdio,
		open:   open,
		build:  build,
		ended:  make(chan error, 1),
		logOut: os.Stderr,
	}
}

// Execute выполняет команду из args и освобождает ресурсы
func (c *Cli) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

// setup читает конфигурацию и открывает сессию перед запуском команды
func (c *Cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = cfg.NewLogger(c.logOut)

	env, err := c.open(cmd.Context(), cfg, c.onSessionEnded, c.logger)
	if err != nil {
		return err
	}
	c.session = env.Session
	c.registrar = env.Registrar
	c.closeEnv = env.Close
	return nil
}

func (c *Cli) close() error {
	if c.session != nil {
		c.session.Stop()
	}
	if c.closeEnv == nil {
		return nil
	}
	err := c.closeEnv()
	c.closeEnv = nil
	return err
}

// onSessionEnded - logout handler gateway: выход на экран входа для CLI.
// При явном logout reason == nil и сообщение печатает сама команда.
func (c *Cli) onSessionEnded(ctx context.Context, reason error) {
	if reason == nil {
		return
	}

	c.io.Println()
	c.io.Printf("Session ended: %v\n", reason)
	c.io.Println("Run 'carelink login' to sign in again.")

	select {
	case c.ended <- reason:
	default:
	}
}

// OpenEnv открывает bbolt (или память при --ephemeral), при заданной passphrase
// оборачивает хранилище в шифрование и создает gateway.
func OpenEnv(ctx context.Context, cfg *config.Config, onLogout auth.LogoutHandler, logger *slog.Logger) (*Env, error) {
	client := api.NewClient(cfg.Server)

	var store storage.TokenStorage
	if cfg.Ephemeral {
		store = memory.New()
	} else {
		bolt, err := boltdb.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		store = bolt

		if cfg.Passphrase != "" {
			encrypted, err := encryptStore(ctx, bolt, cfg.Passphrase)
			if err != nil {
				_ = bolt.Close()
				return nil, err
			}
			store = encrypted
		} else {
			logger.DebugContext(ctx, "tokens stored without encryption, set CARELINK_PASSPHRASE to enable it")
		}
	}

	opts := append(cfg.GatewayOptions(), auth.WithLogger(logger), auth.WithLogoutHandler(onLogout))
	gw := auth.NewGateway(client, store, opts...)

	return &Env{Session: gw, Registrar: client, Close: store.Close}, nil
}

func encryptStore(ctx context.Context, bolt *boltdb.Storage, passphrase string) (*auth.EncryptedStore, error) {
	salt, err := bolt.EncryptionSalt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption salt: %w", err)
	}
	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return auth.NewEncryptedStore(bolt, key)
}

// readSecret получает секрет с приоритетом:
// 1. переменная окружения envName
// 2. файл filePath
// 3. интерактивный ввод
func (c *Cli) readSecret(envName, filePath, prompt string) (string, error) {
	if v := os.Getenv(envName); v != "" {
		return v, nil
	}

	if filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		secret := strings.TrimSpace(string(content))
		if secret == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return secret, nil
	}

	secret, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if secret == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return secret, nil
}

// describeStorageError подсказывает про passphrase, если токены не расшифровываются
func describeStorageError(err error) error {
	if errors.Is(err, crypto.ErrDecrypt) {
		return fmt.Errorf("stored session cannot be decrypted, check --passphrase: %w", err)
	}
	return err
}
