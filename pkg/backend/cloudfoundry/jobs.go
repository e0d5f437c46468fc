package cloudfoundry

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// ListJobs 查询Scheduler中的Job，page<1时只取分页信息
func (c *Client) ListJobs(ctx context.Context, page int, detailed bool) (*schedule.JobPage, error) {
	spaceGUID, err := c.SpaceGUID(ctx)
	if err != nil {
		return nil, err
	}

	requested := page
	if requested < 1 {
		requested = 1
	}
	query := url.Values{
		"space_guid": {spaceGUID},
		"detailed":   {strconv.FormatBool(detailed)},
		"page":       {strconv.Itoa(requested)},
	}
	var list jobList
	if err := c.scheduler.Get(ctx, "/jobs", query, &list); err != nil {
		return nil, fmt.Errorf("查询Job列表失败: %w", err)
	}

	result := &schedule.JobPage{TotalPages: list.Pagination.TotalPages}
	if page < 1 {
		return result, nil
	}
	result.Resources = make([]schedule.Job, 0, len(list.Resources))
	for _, j := range list.Resources {
		result.Resources = append(result.Resources, toJob(j))
	}
	return result, nil
}

// Unschedule 按名称删除Job及其调度
func (c *Client) Unschedule(ctx context.Context, scheduleName string) error {
	guid, err := c.jobGUID(ctx, scheduleName)
	if err != nil {
		return err
	}
	if err := c.scheduler.Delete(ctx, "/jobs/"+guid, nil); err != nil {
		return fmt.Errorf("删除Job %s 失败: %w", scheduleName, err)
	}
	c.log.Debug("已删除Job", logx.String("job", scheduleName))
	return nil
}

func (c *Client) jobGUID(ctx context.Context, name string) (string, error) {
	spaceGUID, err := c.SpaceGUID(ctx)
	if err != nil {
		return "", err
	}
	var list jobList
	query := url.Values{"space_guid": {spaceGUID}, "name": {name}}
	if err := c.scheduler.Get(ctx, "/jobs", query, &list); err != nil {
		return "", fmt.Errorf("查询Job %s 失败: %w", name, err)
	}
	for _, j := range list.Resources {
		if j.Name == name {
			return j.GUID, nil
		}
	}
	return "", fmt.Errorf("Job %s 不存在", name)
}

func toJob(j job) schedule.Job {
	out := schedule.Job{
		ID:            j.GUID,
		Name:          j.Name,
		ApplicationID: j.AppGUID,
		Command:       j.Command,
	}
	for _, s := range j.JobSchedules {
		out.JobSchedules = append(out.JobSchedules, schedule.JobSchedule{Expression: s.Expression, ExpressionType: s.ExpressionType})
	}
	return out
}
