package kubernetes

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// ListJobs 按配置的页大小对缓存的CronJob本地分页，page<1时只返回分页信息
func (c *Client) ListJobs(ctx context.Context, page int, detailed bool) (*schedule.JobPage, error) {
	all, err := c.loadCronJobs(ctx)
	if err != nil {
		return nil, err
	}

	size := c.cfg.PageSize
	result := &schedule.JobPage{TotalPages: (len(all) + size - 1) / size}
	if page < 1 {
		return result, nil
	}

	start := (page - 1) * size
	end := start + size
	if start >= len(all) {
		result.Resources = []schedule.Job{}
		return result, nil
	}
	if end > len(all) {
		end = len(all)
	}
	result.Resources = make([]schedule.Job, 0, end-start)
	for i := start; i < end; i++ {
		result.Resources = append(result.Resources, toJob(&all[i]))
	}
	return result, nil
}

// Unschedule 删除CronJob
func (c *Client) Unschedule(ctx context.Context, scheduleName string) error {
	if err := c.api.Delete(ctx, c.cronJobsPath()+"/"+scheduleName, nil); err != nil {
		return fmt.Errorf("删除CronJob %s 失败: %w", scheduleName, err)
	}
	c.invalidate()
	return nil
}

// Schedule 以启动器镜像创建CronJob
func (c *Client) Schedule(ctx context.Context, req *schedule.ScheduleRequest) error {
	if req.Resource == nil || req.Resource.Image == "" {
		return fmt.Errorf("kubernetes只支持docker镜像资源，得到 %q", resourceURI(req.Resource))
	}
	expression := req.CronExpression()
	if expression == "" {
		return fmt.Errorf("调度 %s 缺少Cron表达式", req.ScheduleName)
	}

	cj, err := c.buildCronJob(req)
	if err != nil {
		return err
	}
	if err := c.api.Post(ctx, c.cronJobsPath(), nil, cj, nil); err != nil {
		return fmt.Errorf("创建CronJob %s 失败: %w", cj.Metadata.Name, err)
	}
	c.invalidate()
	c.log.Debug("已创建CronJob", logx.String("cronjob", cj.Metadata.Name), logx.String("schedule", expression))
	return nil
}

func (c *Client) buildCronJob(req *schedule.ScheduleRequest) (*cronJob, error) {
	name := CronJobName(req.ScheduleName)
	labels := map[string]string{
		CronJobLabel: name,
		AppLabel:     CronJobName(req.AppDefinition.Name),
	}

	var env []envVar
	if len(req.AppDefinition.Properties) > 0 {
		props, err := json.Marshal(req.AppDefinition.Properties)
		if err != nil {
			return nil, fmt.Errorf("序列化应用属性失败: %w", err)
		}
		env = append(env, envVar{Name: "SPRING_APPLICATION_JSON", Value: string(props)})
	}

	return &cronJob{
		APIVersion: "batch/v1",
		Kind:       "CronJob",
		Metadata:   objectMeta{Name: name, Namespace: c.cfg.Namespace, Labels: labels},
		Spec: cronJobSpec{
			Schedule:          req.CronExpression(),
			ConcurrencyPolicy: "Forbid",
			JobTemplate: jobTemplateSpec{Spec: jobSpec{Template: podTemplateSpec{
				Metadata: objectMeta{Labels: labels},
				Spec: podSpec{
					RestartPolicy: "Never",
					Containers: []container{{
						Name:            name,
						Image:           req.Resource.Image,
						ImagePullPolicy: c.cfg.ImagePullPolicy,
						Args:            append([]string(nil), req.CommandLineArgs...),
						Env:             env,
					}},
				},
			}}},
		},
	}, nil
}

// ListApplications 每个CronJob对应一个应用
func (c *Client) ListApplications(ctx context.Context) ([]schedule.Application, error) {
	all, err := c.loadCronJobs(ctx)
	if err != nil {
		return nil, err
	}
	apps := make([]schedule.Application, 0, len(all))
	for i := range all {
		apps = append(apps, schedule.Application{ID: all[i].Metadata.UID, Name: appName(&all[i])})
	}
	return apps, nil
}

// GetEnvironment 返回同名应用中第一个CronJob的环境变量，应用不存在时返回 nil, nil
// 同一应用可能有多个CronJob，迁移时使用 GetEnvironmentByID
func (c *Client) GetEnvironment(ctx context.Context, name string) (*schedule.AppEnvironment, error) {
	return c.environment(ctx, func(cj *cronJob) bool { return appName(cj) == name })
}

// GetEnvironmentByID 按CronJob UID返回其第一个容器的环境变量
func (c *Client) GetEnvironmentByID(ctx context.Context, uid string) (*schedule.AppEnvironment, error) {
	return c.environment(ctx, func(cj *cronJob) bool { return cj.Metadata.UID == uid })
}

func (c *Client) environment(ctx context.Context, match func(*cronJob) bool) (*schedule.AppEnvironment, error) {
	all, err := c.loadCronJobs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if !match(&all[i]) {
			continue
		}
		env := make(map[string]string)
		if ctr := all[i].firstContainer(); ctr != nil {
			for _, e := range ctr.Env {
				env[e.Name] = e.Value
			}
		}
		return &schedule.AppEnvironment{UserProvided: env}, nil
	}
	return nil, nil
}

// CronJobName 转换为合法的CronJob名称：小写、'_'与非法字符替换为'-'、截断
func CronJobName(name string) string {
	n := strings.ToLower(name)
	n = strings.ReplaceAll(n, "_", "-")
	n = invalidNameChars.ReplaceAllString(n, "-")
	if len(n) > maxNameLength {
		n = n[:maxNameLength]
	}
	return strings.Trim(n, "-")
}

func toJob(cj *cronJob) schedule.Job {
	j := schedule.Job{
		ID:            cj.Metadata.UID,
		Name:          cj.Metadata.Name,
		ApplicationID: cj.Metadata.UID,
		Command:       jarLauncher,
	}
	if ctr := cj.firstContainer(); ctr != nil && len(ctr.Args) > 0 {
		j.Command += " " + shellquote.Join(ctr.Args...)
	}
	if cj.Spec.Schedule != "" {
		j.JobSchedules = []schedule.JobSchedule{{Expression: cj.Spec.Schedule, ExpressionType: "cron"}}
	}
	return j
}

func resourceURI(r *schedule.Resource) string {
	if r == nil {
		return ""
	}
	return r.URI
}
