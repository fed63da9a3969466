package sources

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const githubHost = "github.com"

type githubSource struct {
	owner string
	repo  string
	ref   string
	path  string
	opts  Options
}

func newGithubSource(owner, repo, ref, filePath string, opts Options) *githubSource {
	return &githubSource{owner: owner, repo: repo, ref: ref, path: filePath, opts: opts}
}

func (s *githubSource) ID() string {
	return "github:" + s.owner + "/" + s.repo + "@" + s.ref + ":" + s.path
}

func (s *githubSource) Info() Info {
	return Info{
		Kind:  KindGithub,
		Owner: s.owner,
		Repo:  s.repo,
		Ref:   s.ref,
		Path:  s.path,
		Host:  githubHost,
		URL:   s.rawURL(),
	}
}

func (s *githubSource) rawURL() string {
	escaped := (&url.URL{Path: s.owner + "/" + s.repo + "/" + s.ref + "/" + s.path}).EscapedPath()
	return strings.TrimRight(s.opts.RawBaseURL, "/") + "/" + escaped
}

func (s *githubSource) Read(ctx context.Context, cache Cache) (string, error) {
	id := s.ID()
	token := ResolveToken(s.opts.GithubToken, githubHost, s.owner, s.repo, s.opts.LookupEnv)

	hint := ""
	if token == "" {
		res, err := fetch(ctx, s.opts, s.rawURL(), id, cache, nil)
		if err != nil {
			return "", newSourceError(CodeRawFetch, id, 0, "raw fetch failed", err)
		}
		switch {
		case res.TooLarge:
			return "", newSourceError(CodeHTTPMaxSize, id, res.Status, "raw file too large", nil)
		case res.ok():
			s.opts.Logger.Debug("sources.github.raw", "source_id", id, "status", res.Status, "cached", res.FromCache)
			return res.Body, nil
		case res.Status == http.StatusForbidden:
			hint = CodePrivateRepo
		case res.Status == http.StatusNotFound:
			hint = CodeNotFound
		default:
			return "", newSourceError(CodeRawFetch, id, res.Status, "raw fetch failed", snippetError(res.Body))
		}
		s.opts.Logger.Debug("sources.github.raw_fallback", "source_id", id, "hint", hint)
	}

	body, status, err := s.readContents(ctx, token, cache)
	if err == nil {
		return body, nil
	}
	if hint != "" {
		message := "file not found on GitHub"
		if hint == CodePrivateRepo {
			message = "private repository requires GITHUB_TOKEN"
		}
		return "", newSourceError(hint, id, status, message, err)
	}
	if status == http.StatusNotFound {
		return "", newSourceError(CodeNotFound, id, status, "file not found on GitHub", err)
	}
	return "", newSourceError(CodeGithubAPI, id, status, "GitHub API request failed", err)
}

// readContents fetches the file through the contents API. The returned
// status is the HTTP status of the failing call, or 0.
func (s *githubSource) readContents(ctx context.Context, token string, cache Cache) (string, int, error) {
	client, err := s.client(ctx, token)
	if err != nil {
		return "", 0, err
	}

	opts := &gh.RepositoryContentGetOptions{Ref: s.ref}
	file, _, resp, err := client.Repositories.GetContents(ctx, s.owner, s.repo, s.path, opts)
	if err != nil {
		return "", responseStatus(resp, err), err
	}
	if file == nil {
		return "", http.StatusOK, errors.New("path is a directory, not a file")
	}

	var content string
	if file.GetEncoding() == "none" {
		// Files over 1 MB come back without inline content.
		content, err = s.download(ctx, client, opts)
	} else {
		content, err = file.GetContent()
	}
	if err != nil {
		return "", responseStatus(nil, err), err
	}

	if cache != nil && resp != nil && resp.Response != nil {
		cache.SetEntry(s.ID(), remoteEntry(resp.Header, resp.StatusCode, Entry{}))
		cache.StoreBody(s.ID(), content)
	}
	s.opts.Logger.Debug("sources.github.contents", "source_id", s.ID(), "bytes", len(content), "authenticated", token != "")
	return content, 0, nil
}

func (s *githubSource) download(ctx context.Context, client *gh.Client, opts *gh.RepositoryContentGetOptions) (string, error) {
	rc, _, err := client.Repositories.DownloadContents(ctx, s.owner, s.repo, s.path, opts)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, s.opts.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.opts.MaxBytes {
		return "", errors.New("file too large")
	}
	return string(data), nil
}

func (s *githubSource) client(ctx context.Context, token string) (*gh.Client, error) {
	httpClient := s.opts.HTTPClient
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.opts.HTTPClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = s.opts.Timeout
	}

	client := gh.NewClient(httpClient)
	client.UserAgent = s.opts.UserAgent
	if s.opts.APIBaseURL != "" {
		base, err := url.Parse(strings.TrimRight(s.opts.APIBaseURL, "/") + "/")
		if err != nil {
			return nil, err
		}
		client.BaseURL = base
	}
	return client, nil
}

func responseStatus(resp *gh.Response, err error) int {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return 0
}
