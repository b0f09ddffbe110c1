// Package oauth 处理 Gmail 委托授权跳转
// Package oauth hands the user off to the Gmail delegated-authorization page.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"

	"msgdash/internal/i18n"
)

// ErrEmptyURL 后端返回了空的授权地址 / backend returned no authorization URL
var ErrEmptyURL = errors.New("empty authorization url")

// URLSource 获取授权地址 / fetches the authorization URL
type URLSource interface {
	GoogleOAuthLogin(ctx context.Context) (string, error)
}

// Redirector 请求授权地址并交给系统浏览器打开
// Redirector asks the backend for an authorization URL and opens it in the
// system browser. Nothing is retried.
type Redirector struct {
	Source URLSource
	// Open performs the navigation. Defaults to browser.OpenURL.
	Open func(url string) error

	loading atomic.Bool
}

// NewRedirector returns a Redirector that opens URLs with the system browser.
func NewRedirector(src URLSource) *Redirector {
	return &Redirector{Source: src, Open: browser.OpenURL}
}

// Loading reports whether the authorization URL request is in flight.
func (r *Redirector) Loading() bool {
	return r.loading.Load()
}

// Connect 请求地址并跳转；失败通过 onError 报告
// Connect requests the URL and navigates to it. Failures are reported through
// onError (when set) and returned. The URL is returned even when the browser
// could not be opened so the caller can print it.
func (r *Redirector) Connect(ctx context.Context, onError func(string)) (string, error) {
	url, err := r.fetch(ctx)
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" || errors.Is(err, ErrEmptyURL) {
			msg = i18n.T("gmail.failed")
		}
		log.Warn().Err(err).Msg("oauth: authorization url request failed")
		report(onError, msg)
		return "", err
	}

	open := r.Open
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(url); err != nil {
		log.Warn().Err(err).Msg("oauth: open browser failed")
		report(onError, i18n.T("gmail.browser_failed", url))
		return url, fmt.Errorf("open browser: %w", err)
	}
	log.Info().Msg("oauth: redirected to authorization page")
	return url, nil
}

// fetch holds the loading flag only for the URL request itself.
func (r *Redirector) fetch(ctx context.Context) (string, error) {
	r.loading.Store(true)
	defer r.loading.Store(false)

	if r.Source == nil {
		return "", ErrEmptyURL
	}
	url, err := r.Source.GoogleOAuthLogin(ctx)
	if err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return "", ErrEmptyURL
	}
	return url, nil
}

func report(onError func(string), msg string) {
	if onError != nil {
		onError(msg)
	}
}
