package resource

import (
	"testing"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Maven(t *testing.T) {
	r := NewResolver()

	res, err := r.Resolve("maven://org.springframework.cloud:spring-cloud-dataflow-scheduler-task-launcher:2.3.0.BUILD-SNAPSHOT")
	require.NoError(t, err)
	assert.Equal(t, "maven", res.Scheme)
	assert.Equal(t, "org.springframework.cloud", res.GroupID)
	assert.Equal(t, "spring-cloud-dataflow-scheduler-task-launcher", res.ArtifactID)
	assert.Equal(t, "2.3.0.BUILD-SNAPSHOT", res.Version)
	assert.Equal(t, "jar", res.Extension)

	res, err = r.Resolve("maven://org.springframework.cloud:spring-cloud-scheduler-spi-test-app:jar:exec:1.0.0.RELEASE")
	require.NoError(t, err)
	assert.Equal(t, "exec", res.Classifier)
	assert.Equal(t, "1.0.0.RELEASE", res.Version)
}

func TestResolve_DockerAndHTTP(t *testing.T) {
	r := NewResolver()

	res, err := r.Resolve("docker:springcloud/spring-cloud-dataflow-scheduler-task-launcher:2.3.0")
	require.NoError(t, err)
	assert.Equal(t, "docker", res.Scheme)
	assert.Equal(t, "springcloud/spring-cloud-dataflow-scheduler-task-launcher:2.3.0", res.Image)
	assert.Equal(t, "spring-cloud-dataflow-scheduler-task-launcher", res.Name())

	res, err = r.Resolve("https://repo.example.com/libs/launcher.jar")
	require.NoError(t, err)
	assert.Equal(t, "/libs/launcher.jar", res.Location)
	assert.Equal(t, "launcher", res.Name())
}

func TestResolve_Invalid(t *testing.T) {
	r := NewResolver()
	for _, uri := range []string{
		"",
		"no-scheme",
		"maven://only:two",
		"maven://a::1",
		"docker:",
		"ftp://host/file",
		"https:///nohost",
	} {
		_, err := r.Resolve(uri)
		assert.ErrorIs(t, err, schedule.ErrInvalidResource, "uri=%q", uri)
	}
}
