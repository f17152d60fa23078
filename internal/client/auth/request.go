package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/carelink/internal/client/api"
)

// Request describes an outgoing authenticated call.
// URL may be an API path ("/account/profile/") or an absolute URL.
type Request struct {
	Header http.Header
	Method string
	URL    string
	Body   []byte
}

// Do выполняет запрос с Bearer токеном.
// На 401 выполняется ровно один renew и ровно один повтор; результат повтора
// возвращается как есть, даже если это снова 401.
// Вызывающий закрывает resp.Body.
func (g *Gateway) Do(ctx context.Context, req Request) (*http.Response, error) {
	token, err := g.GetValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := g.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	drainAndClose(resp)
	g.logger.InfoContext(ctx, "access token rejected by server, renewing",
		slog.String("method", req.Method),
		slog.String("url", req.URL))

	// Один цикл обновления на отказ: если параллельный вызов уже сохранил
	// пригодный новый токен, это и есть обновление, повтор идет с ним
	token, err = g.tokenAfterRejection(ctx, token)
	if err != nil {
		return nil, err
	}

	return g.send(ctx, req, token)
}

// DoJSON выполняет Do с JSON телом и декодирует JSON ответ в out.
// Не-2xx ответы возвращаются как *api.StatusError.
func (g *Gateway) DoJSON(ctx context.Context, method, path string, in, out any) error {
	req := Request{Method: method, URL: path, Header: http.Header{}}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.Body = body
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return api.DecodeResponse(resp, out)
}

// tokenAfterRejection возвращает токен для повтора после 401.
// Если другой вызов уже заменил отклоненный токен пригодным, renew не нужен.
func (g *Gateway) tokenAfterRejection(ctx context.Context, rejected string) (string, error) {
	pair, err := g.store.GetTokens(ctx)
	if err == nil && pair.AccessToken != "" && pair.AccessToken != rejected && !g.IsExpiring(pair.AccessToken) {
		return pair.AccessToken, nil
	}
	return g.Renew(ctx)
}

// send собирает http.Request: заголовки вызывающего, затем Authorization поверх них
func (g *Gateway) send(ctx context.Context, req Request, token string) (*http.Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.backend.URL(req.URL), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.backend.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return resp, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
