package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoDocumentLink is returned when the rules page links no text document.
var ErrNoDocumentLink = errors.New("no rules document link found")

// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// maxResponseBytes caps pages and documents read from the network.
const maxResponseBytes = 32 << 20

const (
	documentLinkSuffix = ".txt"
	featuredLinkClass  = "cta"
)

// documentVersionPattern extracts the publication date embedded in the
// document file name, e.g. "MagicCompRules%2020251114.txt".
var documentVersionPattern = regexp.MustCompile(`(?:%20| )(.+?)\.txt$`)

// HTTPSourceOptions configures an HTTPSource.
type HTTPSourceOptions struct {
	// PageURL is scanned for a link to the current document.
	PageURL string

	// DocumentURL, when set, is downloaded directly without discovery.
	DocumentURL string

	// Encoding of the downloaded document. Defaults to Windows-1252.
	Encoding string

	// Client defaults to a TimeoutHTTPClient with no User-Agent override.
	Client HTTPClient

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// HTTPSource discovers and downloads rules documents over HTTP.
type HTTPSource struct {
	client      HTTPClient
	pageURL     string
	documentURL string
	encoding    string
	logger      *slog.Logger

	mu         sync.Mutex
	discovered map[string]string
}

// NewHTTPSource creates an HTTPSource. At least one of PageURL and
// DocumentURL must be set.
func NewHTTPSource(options HTTPSourceOptions) (*HTTPSource, error) {
	if options.PageURL == "" && options.DocumentURL == "" {
		return nil, errors.New("http source needs a page URL or a document URL")
	}

	client := options.Client
	if client == nil {
		client = NewTimeoutHTTPClient(0, "")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPSource{
		client:      client,
		pageURL:     options.PageURL,
		documentURL: options.DocumentURL,
		encoding:    options.Encoding,
		logger:      logger,
		discovered:  make(map[string]string),
	}, nil
}

// LatestVersion returns the version token of the currently published
// document. With a direct document URL the token comes from the URL alone.
func (httpSource *HTTPSource) LatestVersion(ctx context.Context) (string, error) {
	if httpSource.documentURL != "" {
		return versionFromLink(httpSource.documentURL), nil
	}

	page, err := httpSource.get(ctx, httpSource.pageURL)
	if err != nil {
		return "", fmt.Errorf("fetching rules page: %w", err)
	}

	link, err := findDocumentLink(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", httpSource.pageURL, err)
	}

	documentURL, err := resolveLink(httpSource.pageURL, link)
	if err != nil {
		return "", err
	}

	version := versionFromLink(link)
	httpSource.mu.Lock()
	httpSource.discovered[version] = documentURL
	httpSource.mu.Unlock()

	httpSource.logger.Debug("rules document discovered", "version", version, "url", documentURL)
	return version, nil
}

// Fetch downloads and decodes the document for version.
func (httpSource *HTTPSource) Fetch(ctx context.Context, version string) (string, error) {
	documentURL, err := httpSource.documentURLFor(ctx, version)
	if err != nil {
		return "", err
	}

	data, err := httpSource.get(ctx, documentURL)
	if err != nil {
		return "", fmt.Errorf("downloading rules document: %w", err)
	}
	return decodeDocument(data, httpSource.encoding)
}

func (httpSource *HTTPSource) documentURLFor(ctx context.Context, version string) (string, error) {
	if httpSource.documentURL != "" {
		return httpSource.documentURL, nil
	}

	httpSource.mu.Lock()
	documentURL, ok := httpSource.discovered[version]
	httpSource.mu.Unlock()
	if ok {
		return documentURL, nil
	}

	latest, err := httpSource.LatestVersion(ctx)
	if err != nil {
		return "", err
	}
	if latest != version {
		return "", fmt.Errorf("rules version %s is no longer published (latest %s)", version, latest)
	}

	httpSource.mu.Lock()
	defer httpSource.mu.Unlock()
	return httpSource.discovered[version], nil
}

func (httpSource *HTTPSource) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httpSource.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, target, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return data, nil
}

// findDocumentLink returns the href of the first anchor pointing at a text
// file, preferring the page's featured call-to-action link.
func findDocumentLink(body io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(body)
	fallback := ""

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if !errors.Is(tokenizer.Err(), io.EOF) {
				return "", tokenizer.Err()
			}
			if fallback != "" {
				return fallback, nil
			}
			return "", ErrNoDocumentLink

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.DataAtom != atom.A {
				continue
			}

			var href, class string
			for _, attribute := range token.Attr {
				switch attribute.Key {
				case "href":
					href = strings.TrimSpace(attribute.Val)
				case "class":
					class = attribute.Val
				}
			}
			if !strings.HasSuffix(href, documentLinkSuffix) {
				continue
			}
			for _, name := range strings.Fields(class) {
				if name == featuredLinkClass {
					return href, nil
				}
			}
			if fallback == "" {
				fallback = href
			}
		}
	}
}

func resolveLink(base, link string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}
	linkURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing document link %q: %w", link, err)
	}
	return baseURL.ResolveReference(linkURL).String(), nil
}

// versionFromLink derives a version token from a document link: the date
// suffix when present, otherwise the file name.
func versionFromLink(link string) string {
	if match := documentVersionPattern.FindStringSubmatch(link); match != nil {
		return match[1]
	}
	return strings.TrimSuffix(path.Base(link), documentLinkSuffix)
}
