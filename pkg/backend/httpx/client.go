// Package httpx 调度后端共用的JSON REST客户端（带限流与Bearer认证）
package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout 默认请求超时
const DefaultTimeout = 30 * time.Second

// Options 客户端选项
type Options struct {
	BaseURL            string
	Token              string
	TokenScheme        string  // Authorization头的认证方案，默认 Bearer
	Timeout            time.Duration
	RateLimit          float64 // 每秒请求数，<=0 表示不限流
	Burst              int
	InsecureSkipVerify bool
	HTTPClient         *http.Client // 非nil时直接使用
}

// Client JSON REST客户端
type Client struct {
	baseURL     string
	token       string
	tokenScheme string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// StatusError 非2xx响应
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s %s 返回状态码 %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// IsNotFound 判断错误是否为404
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// New 创建客户端
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("无效的服务地址 %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
		if opts.InsecureSkipVerify {
			httpClient.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			}
		}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	scheme := opts.TokenScheme
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Client{
		baseURL:     base,
		token:       opts.Token,
		tokenScheme: scheme,
		httpClient:  httpClient,
		limiter:     limiter,
	}, nil
}

// BaseURL 返回服务地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get 发送GET请求
func (c *Client) Get(ctx context.Context, path string, query url.Values, result any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, result)
}

// Post 发送POST请求
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, query, body, result)
}

// Delete 发送DELETE请求
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	return c.Do(ctx, http.MethodDelete, path, query, nil, nil)
}

// Do 发送请求，body与result均为JSON；result为nil时忽略响应体
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("等待限流失败: %w", err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.tokenScheme+" "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	return parseResponse(method, target, resp, result)
}

func parseResponse(method, target string, resp *http.Response, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(data))
	}
	return nil
}
