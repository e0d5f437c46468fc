package tagger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagCommandLineArgs(t *testing.T) {
	tg := New("tasklauncher")

	got := tg.TagCommandLineArgs([]string{
		"defaultCmd=WOW",
		"--spring.cloud.task.name=foo",
		"spring.cloud.dataflow.client.serverUri=http://scdf:9393",
		"--verbose",
	})

	assert.Equal(t, []string{
		"cmdarg.tasklauncher.defaultCmd=WOW",
		"spring.cloud.dataflow.client.serverUri=http://scdf:9393",
		"cmdarg.tasklauncher.--verbose",
	}, got)
}

func TestTagCommandLineArgs_Empty(t *testing.T) {
	tg := New("tasklauncher")
	got := tg.TagCommandLineArgs(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTaskNameArg(t *testing.T) {
	assert.Equal(t, "--spring.cloud.scheduler.task.launcher.taskName=demo", TaskNameArg("demo"))
}

func TestTagAppProperties(t *testing.T) {
	tg := New("tasklauncher")
	props := map[string]string{
		"foo":                                    "bar",
		"spring.cloud.task.name":                 "ignored",
		"spring.cloud.dataflow.client.serverUri": "http://scdf:9393",
	}

	got := tg.TagAppProperties("defaultAppName", props, AppPrefix)
	assert.Equal(t, map[string]string{
		"tasklauncher.app.defaultAppName.foo":    "bar",
		"spring.cloud.dataflow.client.serverUri": "http://scdf:9393",
	}, got)

	noApp := tg.TagAppProperties("", map[string]string{"foo": "bar"}, DeployerPrefix)
	assert.Equal(t, map[string]string{"tasklauncher.deployer.foo": "bar"}, noApp)
}

func TestAddSchedulerAppProps(t *testing.T) {
	in := map[string]string{"a": "b"}
	out := AddSchedulerAppProps(in, "http://localhost:9393")

	assert.Len(t, out, 2)
	assert.Equal(t, "http://localhost:9393", out[DataFlowURIKey])
	// 原map不被修改
	assert.Len(t, in, 1)
}

func TestExtractAndQualifySchedulerProperties(t *testing.T) {
	got := ExtractAndQualifySchedulerProperties(map[string]string{
		"spring.cloud.scheduler.cron.expression": "0 0 * * *",
		"SPRING.CLOUD.SCHEDULER.other":           "upper",
		"SPRING_APPLICATION_JSON":                "{}",
		"spring.cloud.scheduler.foo":             "bar",
	})
	assert.Equal(t, map[string]string{
		"spring.cloud.scheduler.cron.expression": "0 0 * * *",
		"spring.cloud.scheduler.foo":             "bar",
	}, got)
}
