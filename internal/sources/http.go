package sources

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

type httpSource struct {
	url  *url.URL
	opts Options
}

func newHTTPSource(u *url.URL, opts Options) *httpSource {
	return &httpSource{url: u, opts: opts}
}

func (s *httpSource) ID() string { return "http:" + s.url.String() }

func (s *httpSource) Info() Info {
	return Info{Kind: KindHTTP, Host: s.url.Hostname(), Path: s.url.Path, URL: s.url.String()}
}

func (s *httpSource) Read(ctx context.Context, cache Cache) (string, error) {
	id := s.ID()
	res, err := fetch(ctx, s.opts, s.url.String(), id, cache, s.acceptContentType)
	if err != nil {
		if code := CodeOf(err); code != "" {
			return "", err
		}
		return "", newSourceError(CodeHTTPFetch, id, 0, "network error", err)
	}
	switch {
	case res.TooLarge:
		return "", newSourceError(CodeHTTPMaxSize, id, res.Status, fmt.Sprintf("response larger than %d bytes", s.opts.MaxBytes), nil)
	case !res.ok():
		return "", newSourceError(CodeHTTPStatus, id, res.Status, "unexpected status", snippetError(res.Body))
	}
	s.opts.Logger.Debug("sources.http.read", "source_id", id, "status", res.Status, "cached", res.FromCache, "bytes", len(res.Body))
	return res.Body, nil
}

func (s *httpSource) acceptContentType(resp *http.Response) error {
	mediaType := ""
	if header := resp.Header.Get("Content-Type"); header != "" {
		if parsed, _, err := mime.ParseMediaType(header); err == nil {
			mediaType = strings.ToLower(parsed)
		} else {
			mediaType = strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
		}
	}
	if mediaType != "" && slices.Contains(s.opts.AllowedContentTypes, mediaType) {
		return nil
	}
	if !s.opts.DisableMdExtensionFallback && strings.HasSuffix(strings.ToLower(s.url.Path), ".md") {
		return nil
	}
	if mediaType == "" {
		mediaType = "none"
	}
	return newSourceError(CodeUnsupportedMIME, s.ID(), resp.StatusCode,
		fmt.Sprintf("content-type %q not allowed (allowed: %s)", mediaType, strings.Join(s.opts.AllowedContentTypes, ", ")), nil)
}

type fetchResult struct {
	Status    int
	Header    http.Header
	Body      string
	FromCache bool
	TooLarge  bool
}

// ok reports a usable body: a 2xx response or a 304 served from the body
// cache.
func (r *fetchResult) ok() bool {
	return r.FromCache || (r.Status >= 200 && r.Status < 300)
}

// fetch performs a GET with validators from cache. A 304 is answered from
// the body cache when possible and otherwise retried unconditionally.
// Non-2xx responses are returned with a short body snippet, not as errors.
func fetch(ctx context.Context, opts Options, rawURL, sourceID string, cache Cache, accept func(*http.Response) error) (*fetchResult, error) {
	var previous Entry
	conditional := map[string]string{}
	if cache != nil {
		if entry, ok := cache.Entry(sourceID); ok && entry.Kind == KindRemote {
			previous = entry
			if entry.ETag != "" {
				conditional["If-None-Match"] = entry.ETag
			}
			if entry.LastModified != "" {
				conditional["If-Modified-Since"] = entry.LastModified
			}
		}
	}

	resp, err := doGet(ctx, opts, rawURL, conditional)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotModified {
		drainClose(resp)
		if cache != nil {
			if body, ok := cache.Body(sourceID); ok {
				cache.SetEntry(sourceID, remoteEntry(resp.Header, http.StatusNotModified, previous))
				return &fetchResult{Status: http.StatusNotModified, Header: resp.Header, Body: body, FromCache: true}, nil
			}
		}
		resp, err = doGet(ctx, opts, rawURL, nil)
		if err != nil {
			return nil, err
		}
	}
	defer drainClose(resp)

	result := &fetchResult{Status: resp.StatusCode, Header: resp.Header}
	if !result.ok() {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		result.Body = string(snippet)
		return result, nil
	}
	if resp.ContentLength > opts.MaxBytes {
		result.TooLarge = true
		return result, nil
	}
	if accept != nil {
		if err := accept(resp); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > opts.MaxBytes {
		result.TooLarge = true
		return result, nil
	}
	result.Body = string(data)

	if cache != nil {
		cache.SetEntry(sourceID, remoteEntry(resp.Header, resp.StatusCode, Entry{}))
		cache.StoreBody(sourceID, result.Body)
	}
	return result, nil
}

func doGet(ctx context.Context, opts Options, rawURL string, headers map[string]string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "*/*")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func drainClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func remoteEntry(header http.Header, status int, previous Entry) Entry {
	entry := Entry{
		Kind:         KindRemote,
		ETag:         header.Get("ETag"),
		LastModified: header.Get("Last-Modified"),
		LastStatus:   status,
		LastSeen:     nowStamp(),
	}
	if entry.ETag == "" {
		entry.ETag = previous.ETag
	}
	if entry.LastModified == "" {
		entry.LastModified = previous.LastModified
	}
	return entry
}

func snippetError(body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return fmt.Errorf("response: %s", body)
}
