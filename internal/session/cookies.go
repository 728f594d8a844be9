package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// CookieJar is an http.CookieJar whose cookies can all be expired at once.
type CookieJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
}

// NewCookieJar creates an empty jar.
func NewCookieJar() *CookieJar {
	inner, _ := cookiejar.New(nil)
	return &CookieJar{inner: inner}
}

func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
}

func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// ExpireAll drops every cookie held by the jar.
func (j *CookieJar) ExpireAll() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner, _ = cookiejar.New(nil)
}
