// Package kubernetes Kubernetes平台的调度后端（batch/v1 CronJob）
package kubernetes

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LENAX/schedule-migrator/pkg/backend/httpx"
	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

const (
	// CronJobLabel 由Data Flow创建的CronJob都带有此标签
	CronJobLabel = "spring-cronjob-id"
	// AppLabel 所属应用名称
	AppLabel = "spring-app-id"
	// DefaultPageSize 本地分页大小
	DefaultPageSize = 50
	// DefaultTokenFile 集群内ServiceAccount令牌路径
	DefaultTokenFile = "/var/run/secrets/kubernetes.io/serviceaccount/token"

	jarLauncher = "org.springframework.boot.loader.JarLauncher"
	// maxNameLength CronJob名称上限（Job名称会追加11位后缀）
	maxNameLength = 52
)

// Config Kubernetes连接配置
type Config struct {
	APIURL             string
	Namespace          string
	Token              string
	TokenFile          string
	PageSize           int
	ImagePullPolicy    string
	Timeout            time.Duration
	RateLimit          float64
	InsecureSkipVerify bool
}

// Client Kubernetes调度后端
// 同时实现 LegacyScheduler、TargetScheduler、AppRegistry
type Client struct {
	api *httpx.Client
	cfg Config
	log logx.Logger

	mu       sync.Mutex
	cronJobs []cronJob
	loaded   bool
}

// New 创建客户端
func New(cfg Config, log logx.Logger) (*Client, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("kubernetes: namespace 不能为空")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("读取令牌文件失败: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}

	api, err := httpx.New(httpx.Options{
		BaseURL:            cfg.APIURL,
		Token:              token,
		Timeout:            cfg.Timeout,
		RateLimit:          cfg.RateLimit,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("kubernetes api: %w", err)
	}

	return &Client{
		api: api,
		cfg: cfg,
		log: log.With(logx.String("comp", "kubernetes"), logx.String("namespace", cfg.Namespace)),
	}, nil
}

func (c *Client) cronJobsPath() string {
	return "/apis/batch/v1/namespaces/" + url.PathEscape(c.cfg.Namespace) + "/cronjobs"
}

// loadCronJobs 拉取全部带标签的CronJob并缓存
func (c *Client) loadCronJobs(ctx context.Context) ([]cronJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.cronJobs, nil
	}

	var all []cronJob
	cont := ""
	for {
		query := url.Values{
			"labelSelector": {CronJobLabel},
			"limit":         {strconv.Itoa(c.cfg.PageSize)},
		}
		if cont != "" {
			query.Set("continue", cont)
		}
		var list cronJobList
		if err := c.api.Get(ctx, c.cronJobsPath(), query, &list); err != nil {
			return nil, fmt.Errorf("查询CronJob列表失败: %w", err)
		}
		all = append(all, list.Items...)
		cont = list.Metadata.Continue
		if cont == "" {
			break
		}
	}

	c.cronJobs = all
	c.loaded = true
	c.log.Debug("已加载CronJob", logx.Int("count", len(all)))
	return all, nil
}

// invalidate 清空缓存，下次查询重新拉取
func (c *Client) invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.cronJobs = nil
	c.mu.Unlock()
}

// appName CronJob所属应用名称，缺少标签时使用CronJob名称
func appName(cj *cronJob) string {
	if name := cj.Metadata.Labels[AppLabel]; name != "" {
		return name
	}
	return cj.Metadata.Name
}

var (
	_ schedule.LegacyScheduler = (*Client)(nil)
	_ schedule.TargetScheduler = (*Client)(nil)
	_ schedule.AppRegistry     = (*Client)(nil)
	_ schedule.EnvironmentByID = (*Client)(nil)
)
