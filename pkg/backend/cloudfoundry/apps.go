package cloudfoundry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
)

const appsPerPage = 5000

// ListApplications 列出space下全部应用
func (c *Client) ListApplications(ctx context.Context) ([]schedule.Application, error) {
	apps, err := c.applications(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]schedule.Application, 0, len(apps))
	for _, app := range apps {
		result = append(result, schedule.Application{ID: app.GUID, Name: app.Name})
	}
	return result, nil
}

// GetEnvironment 返回应用的用户环境变量，应用不存在时返回 nil, nil
func (c *Client) GetEnvironment(ctx context.Context, appName string) (*schedule.AppEnvironment, error) {
	guid, ok, err := c.appGUID(ctx, appName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var env environmentVariables
	if err := c.api.Get(ctx, "/v3/apps/"+guid+"/environment_variables", nil, &env); err != nil {
		return nil, fmt.Errorf("查询应用 %s 环境变量失败: %w", appName, err)
	}

	userProvided := make(map[string]string, len(env.Var))
	for k, v := range env.Var {
		switch val := v.(type) {
		case string:
			userProvided[k] = val
		case nil:
			userProvided[k] = ""
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("环境变量 %s 无法编码: %w", k, err)
			}
			userProvided[k] = string(b)
		}
	}
	return &schedule.AppEnvironment{UserProvided: userProvided}, nil
}

// applications 分页拉取应用列表并缓存
func (c *Client) applications(ctx context.Context) ([]resource, error) {
	c.mu.Lock()
	if c.appsReady {
		apps := c.apps
		c.mu.Unlock()
		return apps, nil
	}
	c.mu.Unlock()

	spaceGUID, err := c.SpaceGUID(ctx)
	if err != nil {
		return nil, err
	}

	var apps []resource
	for page := 1; ; page++ {
		var list resourceList
		query := url.Values{
			"space_guids": {spaceGUID},
			"per_page":    {strconv.Itoa(appsPerPage)},
			"page":        {strconv.Itoa(page)},
		}
		if err := c.api.Get(ctx, "/v3/apps", query, &list); err != nil {
			return nil, fmt.Errorf("查询应用列表失败: %w", err)
		}
		apps = append(apps, list.Resources...)
		if list.Pagination.Next == nil || list.Pagination.Next.Href == "" {
			break
		}
	}

	c.mu.Lock()
	c.apps = apps
	c.appsReady = true
	c.mu.Unlock()
	return apps, nil
}

func (c *Client) appGUID(ctx context.Context, name string) (string, bool, error) {
	apps, err := c.applications(ctx)
	if err != nil {
		return "", false, err
	}
	for _, app := range apps {
		if app.Name == name {
			return app.GUID, true, nil
		}
	}
	return "", false, nil
}
