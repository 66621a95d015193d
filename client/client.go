package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type Client struct {
	http.Client
	Addr string
}

type Address struct {
	Address     string `json:"address"`
	ExplorerURL string `json:"explorerUrl"`
}

type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type Article struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Content  string   `json:"content"`
	Image    string   `json:"image"`
	ImageURL string   `json:"imageUrl"`
	Link     string   `json:"link"`
	Tags     []string `json:"tags"`
}

type House struct {
	ID           string    `json:"id"`
	TokenID      string    `json:"tokenId"`
	TokenURI     string    `json:"tokenUri"`
	Loading      bool      `json:"loading"`
	Metadata     *Metadata `json:"metadata"`
	Owner        *Address  `json:"owner"`
	HouseAddress *Address  `json:"houseAddress"`
	Articles     []Article `json:"articles"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/ping")
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) House(ctx context.Context, id string) (*House, error) {
	var h House
	if err := c.getJSON(ctx, "/api/houses/"+url.PathEscape(id), &h); err != nil {
		return nil, err
	}

	return &h, nil
}

func (c *Client) Articles(ctx context.Context, houseID string) ([]Article, error) {
	var list []Article
	if err := c.getJSON(ctx, "/api/houses/"+url.PathEscape(houseID)+"/articles", &list); err != nil {
		return nil, err
	}

	return list, nil
}

func (c *Client) SearchArticles(ctx context.Context, tag string) ([]Article, error) {
	var list []Article
	if err := c.getJSON(ctx, "/api/articles/search?tag="+url.QueryEscape(tag), &list); err != nil {
		return nil, err
	}

	return list, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
