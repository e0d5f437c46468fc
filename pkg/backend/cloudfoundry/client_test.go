package cloudfoundry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

const testToken = "tok"

// fakeCF 模拟v3 API与Scheduler API
type fakeCF struct {
	mu        sync.Mutex
	apps      [][]resource // 按页
	envs      map[string]map[string]any
	jobs      []job
	schedules map[string][]jobSchedule
	jobPages  int
	nextGUID  int
	orgCalls  int

	// failSchedules 为true时挂载调度返回500
	failSchedules bool
}

func newFakeCF() *fakeCF {
	return &fakeCF{
		apps: [][]resource{
			{{GUID: "app-1", Name: "timestamp-task"}},
			{{GUID: "app-2", Name: "spring-cloud-dataflow-scheduler-task-launcher"}},
		},
		envs: map[string]map[string]any{
			"app-1": {"SPRING_APPLICATION_JSON": `{"foo":"bar"}`, "PORT": 8080},
		},
		jobs: []job{
			{GUID: "job-1", Name: "nightly", AppGUID: "app-1", Command: "java org.springframework.boot.loader.JarLauncher a=1",
				JobSchedules: []jobSchedule{{Expression: "0 0 * * ?", ExpressionType: cronExpressionType}}},
		},
		schedules: map[string][]jobSchedule{},
		jobPages:  2,
	}
}

func (f *fakeCF) handler(t *testing.T) http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("Authorization") != "bearer "+testToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
	})

	r.GET("/v3/organizations", func(c *gin.Context) {
		f.mu.Lock()
		f.orgCalls++
		f.mu.Unlock()
		if c.Query("names") != "org" {
			c.JSON(http.StatusOK, resourceList{})
			return
		}
		c.JSON(http.StatusOK, resourceList{Resources: []resource{{GUID: "org-guid", Name: "org"}}})
	})
	r.GET("/v3/spaces", func(c *gin.Context) {
		assert.Equal(t, "org-guid", c.Query("organization_guids"))
		c.JSON(http.StatusOK, resourceList{Resources: []resource{{GUID: "space-guid", Name: c.Query("names")}}})
	})
	r.GET("/v3/apps", func(c *gin.Context) {
		assert.Equal(t, "space-guid", c.Query("space_guids"))
		page, _ := strconv.Atoi(c.Query("page"))
		list := resourceList{Pagination: pagination{TotalPages: len(f.apps)}}
		if page >= 1 && page <= len(f.apps) {
			list.Resources = f.apps[page-1]
		}
		if page < len(f.apps) {
			list.Pagination.Next = &link{Href: fmt.Sprintf("/v3/apps?page=%d", page+1)}
		}
		c.JSON(http.StatusOK, list)
	})
	r.GET("/v3/apps/:guid/environment_variables", func(c *gin.Context) {
		c.JSON(http.StatusOK, environmentVariables{Var: f.envs[c.Param("guid")]})
	})

	r.GET("/jobs", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		assert.Equal(t, "space-guid", c.Query("space_guid"))
		list := jobList{Pagination: pagination{TotalPages: f.jobPages}}
		if name := c.Query("name"); name != "" {
			for _, j := range f.jobs {
				if j.Name == name {
					list.Resources = append(list.Resources, j)
				}
			}
		} else if c.Query("page") == "1" {
			list.Resources = f.jobs
		}
		c.JSON(http.StatusOK, list)
	})
	r.POST("/jobs", func(c *gin.Context) {
		var req createJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextGUID++
		j := job{GUID: fmt.Sprintf("new-%d", f.nextGUID), Name: req.Name, AppGUID: c.Query("app_guid"), Command: req.Command}
		f.jobs = append(f.jobs, j)
		c.JSON(http.StatusCreated, j)
	})
	r.POST("/jobs/:guid/schedules", func(c *gin.Context) {
		f.mu.Lock()
		fail := f.failSchedules
		f.mu.Unlock()
		if fail {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "scheduler unavailable"})
			return
		}
		var s jobSchedule
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.schedules[c.Param("guid")] = append(f.schedules[c.Param("guid")], s)
		c.JSON(http.StatusCreated, s)
	})
	r.DELETE("/jobs/:guid", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, j := range f.jobs {
			if j.GUID == c.Param("guid") {
				f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
				c.Status(http.StatusNoContent)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func (f *fakeCF) job(name string) (job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.Name == name {
			return j, true
		}
	}
	return job{}, false
}

func newTestClient(t *testing.T, f *fakeCF, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	cfg.APIURL = srv.URL
	cfg.SchedulerURL = srv.URL
	cfg.Org = "org"
	if cfg.Space == "" {
		cfg.Space = "dev"
	}
	cfg.Token = testToken
	c, err := New(cfg, logx.Nop())
	require.NoError(t, err)
	return c
}

func TestClient_ListApplicationsFollowsPagination(t *testing.T) {
	f := newFakeCF()
	c := newTestClient(t, f, Config{})
	ctx := context.Background()

	apps, err := c.ListApplications(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schedule.Application{
		{ID: "app-1", Name: "timestamp-task"},
		{ID: "app-2", Name: "spring-cloud-dataflow-scheduler-task-launcher"},
	}, apps)

	// space只解析一次
	_, err = c.ListApplications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.orgCalls)
}

func TestClient_GetEnvironment(t *testing.T) {
	c := newTestClient(t, newFakeCF(), Config{})
	ctx := context.Background()

	env, err := c.GetEnvironment(ctx, "timestamp-task")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, `{"foo":"bar"}`, env.UserProvided["SPRING_APPLICATION_JSON"])
	assert.Equal(t, "8080", env.UserProvided["PORT"])

	missing, err := c.GetEnvironment(ctx, "unknown-app")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClient_ListJobs(t *testing.T) {
	c := newTestClient(t, newFakeCF(), Config{})
	ctx := context.Background()

	first, err := c.ListJobs(ctx, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalPages)
	assert.Empty(t, first.Resources)

	page, err := c.ListJobs(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, page.Resources, 1)
	assert.Equal(t, schedule.Job{
		ID:            "job-1",
		Name:          "nightly",
		ApplicationID: "app-1",
		Command:       "java org.springframework.boot.loader.JarLauncher a=1",
		JobSchedules:  []schedule.JobSchedule{{Expression: "0 0 * * ?", ExpressionType: cronExpressionType}},
	}, page.Resources[0])
}

func TestClient_ScheduleAndUnschedule(t *testing.T) {
	f := newFakeCF()
	c := newTestClient(t, f, Config{})
	ctx := context.Background()

	req := &schedule.ScheduleRequest{
		ScheduleName:        "nightly-scdf_timestamp-task",
		AppDefinition:       schedule.AppDefinition{Name: "nightly-scdf_timestamp-task", Properties: map[string]string{"tasklauncher.app.timestamp.foo": "it's"}},
		SchedulerProperties: map[string]string{schedule.CronExpressionKey: "0 0 * * ?"},
		CommandLineArgs:     []string{"cmdarg.tasklauncher.a=1", "--spring.cloud.scheduler.task.launcher.taskName=timestamp-task"},
		Resource:            &schedule.Resource{Scheme: "maven", ArtifactID: "spring-cloud-dataflow-scheduler-task-launcher"},
	}
	require.NoError(t, c.Schedule(ctx, req))

	created, ok := f.job("nightly-scdf_timestamp-task")
	require.True(t, ok)
	assert.Equal(t, "app-2", created.AppGUID)
	assert.Contains(t, created.Command, jarLauncher)
	assert.Equal(t, []jobSchedule{{Enabled: true, Expression: "0 0 * * ?", ExpressionType: cronExpressionType}}, f.schedules[created.GUID])

	tokens, err := shellquote.Split(created.Command)
	require.NoError(t, err)
	assert.Equal(t, `SPRING_APPLICATION_JSON={"tasklauncher.app.timestamp.foo":"it's"}`, tokens[0])
	assert.Equal(t, req.CommandLineArgs, tokens[len(tokens)-2:])

	require.NoError(t, c.Unschedule(ctx, "nightly"))
	_, ok = f.job("nightly")
	assert.False(t, ok)

	assert.Error(t, c.Unschedule(ctx, "nightly"))
}

func TestClient_ScheduleFailureNamesOrphanedJob(t *testing.T) {
	f := newFakeCF()
	f.failSchedules = true
	c := newTestClient(t, f, Config{})

	req := &schedule.ScheduleRequest{
		ScheduleName:        "nightly-scdf_timestamp-task",
		SchedulerProperties: map[string]string{schedule.CronExpressionKey: "0 0 * * ?"},
		Resource:            &schedule.Resource{Scheme: "maven", ArtifactID: "spring-cloud-dataflow-scheduler-task-launcher"},
	}
	err := c.Schedule(context.Background(), req)
	require.Error(t, err)

	created, ok := f.job("nightly-scdf_timestamp-task")
	require.True(t, ok, "Job已创建")
	assert.ErrorContains(t, err, created.GUID)
	assert.ErrorContains(t, err, "nightly-scdf_timestamp-task")
	assert.Empty(t, f.schedules[created.GUID])
}

func TestClient_ScheduleWithoutLauncherApp(t *testing.T) {
	c := newTestClient(t, newFakeCF(), Config{LauncherAppName: "not-deployed"})
	err := c.Schedule(context.Background(), &schedule.ScheduleRequest{ScheduleName: "x"})
	assert.ErrorContains(t, err, "not-deployed")
}

func TestClient_UnknownOrg(t *testing.T) {
	f := newFakeCF()
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	c, err := New(Config{APIURL: srv.URL, SchedulerURL: srv.URL, Org: "other", Space: "dev", Token: testToken}, logx.Nop())
	require.NoError(t, err)
	_, err = c.ListJobs(context.Background(), 0, false)
	assert.ErrorContains(t, err, "organization other")
}

func TestClient_Unauthorized(t *testing.T) {
	f := newFakeCF()
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	c, err := New(Config{APIURL: srv.URL, SchedulerURL: srv.URL, Org: "org", Space: "dev", Token: "wrong"}, logx.Nop())
	require.NoError(t, err)
	_, err = c.ListApplications(context.Background())
	assert.ErrorContains(t, err, "401")
}

func TestBuildCommand(t *testing.T) {
	cmd, err := BuildCommand(DefaultJavaCommand, nil, []string{"a b", "c"})
	require.NoError(t, err)
	assert.Equal(t, DefaultJavaCommand+" "+jarLauncher+" 'a b' c", cmd)

	cmd, err = BuildCommand("java", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "java "+jarLauncher, cmd)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{APIURL: "http://api", SchedulerURL: "http://sched"}, logx.Nop())
	assert.Error(t, err)
	_, err = New(Config{APIURL: "", SchedulerURL: "http://sched", Org: "o", Space: "s"}, logx.Nop())
	assert.Error(t, err)
}
