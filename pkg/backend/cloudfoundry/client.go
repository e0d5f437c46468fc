// Package cloudfoundry Cloud Foundry平台的调度后端（v3 API + Scheduler API）
package cloudfoundry

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/LENAX/schedule-migrator/pkg/backend/httpx"
	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// DefaultJavaCommand 构建Job命令时启动类之前的部分
const DefaultJavaCommand = "$PWD/.java-buildpack/open_jdk_jre/bin/java -cp $PWD/."

// Config Cloud Foundry连接配置
type Config struct {
	APIURL             string
	SchedulerURL       string
	Org                string
	Space              string
	Token              string
	LauncherAppName    string // 为空时使用启动器制品名称
	JavaCommand        string
	Timeout            time.Duration
	RateLimit          float64
	InsecureSkipVerify bool
}

// Client Cloud Foundry调度后端
// 同时实现 LegacyScheduler、TargetScheduler、AppRegistry
type Client struct {
	api       *httpx.Client
	scheduler *httpx.Client
	cfg       Config
	log       logx.Logger

	mu        sync.Mutex
	spaceGUID string
	apps      []resource
	appsReady bool
}

// New 创建客户端
func New(cfg Config, log logx.Logger) (*Client, error) {
	if cfg.Org == "" || cfg.Space == "" {
		return nil, fmt.Errorf("cloudfoundry: org 和 space 不能为空")
	}
	if cfg.JavaCommand == "" {
		cfg.JavaCommand = DefaultJavaCommand
	}

	opts := httpx.Options{
		Token:              cfg.Token,
		TokenScheme:        "bearer",
		Timeout:            cfg.Timeout,
		RateLimit:          cfg.RateLimit,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	opts.BaseURL = cfg.APIURL
	api, err := httpx.New(opts)
	if err != nil {
		return nil, fmt.Errorf("cloudfoundry api: %w", err)
	}
	opts.BaseURL = cfg.SchedulerURL
	scheduler, err := httpx.New(opts)
	if err != nil {
		return nil, fmt.Errorf("cloudfoundry scheduler: %w", err)
	}

	return &Client{
		api:       api,
		scheduler: scheduler,
		cfg:       cfg,
		log:       log.With(logx.String("comp", "cloudfoundry")),
	}, nil
}

// SpaceGUID 解析并缓存space的GUID
func (c *Client) SpaceGUID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spaceGUID != "" {
		return c.spaceGUID, nil
	}

	orgGUID, err := c.lookupOne(ctx, "/v3/organizations", url.Values{"names": {c.cfg.Org}}, "organization", c.cfg.Org)
	if err != nil {
		return "", err
	}
	spaceGUID, err := c.lookupOne(ctx, "/v3/spaces",
		url.Values{"names": {c.cfg.Space}, "organization_guids": {orgGUID}}, "space", c.cfg.Space)
	if err != nil {
		return "", err
	}

	c.spaceGUID = spaceGUID
	c.log.Debug("已解析space", logx.String("org", c.cfg.Org), logx.String("space", c.cfg.Space), logx.String("guid", spaceGUID))
	return spaceGUID, nil
}

func (c *Client) lookupOne(ctx context.Context, path string, query url.Values, kind, name string) (string, error) {
	var list resourceList
	if err := c.api.Get(ctx, path, query, &list); err != nil {
		return "", fmt.Errorf("查询%s %s 失败: %w", kind, name, err)
	}
	if len(list.Resources) == 0 {
		return "", fmt.Errorf("%s %s 不存在", kind, name)
	}
	return list.Resources[0].GUID, nil
}

var (
	_ schedule.LegacyScheduler = (*Client)(nil)
	_ schedule.TargetScheduler = (*Client)(nil)
	_ schedule.AppRegistry     = (*Client)(nil)
)

func urlValues(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}
