package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// Ограничение на размер страницы статьи
const maxPageSize = 5 << 20

// PageScanner достает главную картинку со страницы статьи (og:image и т.п.) через readability
type PageScanner struct {
	client *http.Client
}

func NewPageScanner(client *http.Client) *PageScanner {
	if client == nil {
		client = http.DefaultClient
	}

	return &PageScanner{client: client}
}

func (p *PageScanner) LeadImage(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPageSize), pageURL)
	if err != nil {
		return "", err
	}

	return article.Image, nil
}
