package kubernetes

// batch/v1 CronJob 的最小JSON结构

type objectMeta struct {
	Name      string            `json:"name,omitempty"`
	Namespace string            `json:"namespace,omitempty"`
	UID       string            `json:"uid,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type listMeta struct {
	Continue string `json:"continue,omitempty"`
}

type envVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type container struct {
	Name            string   `json:"name"`
	Image           string   `json:"image"`
	ImagePullPolicy string   `json:"imagePullPolicy,omitempty"`
	Args            []string `json:"args,omitempty"`
	Env             []envVar `json:"env,omitempty"`
}

type podSpec struct {
	RestartPolicy string      `json:"restartPolicy,omitempty"`
	Containers    []container `json:"containers"`
}

type podTemplateSpec struct {
	Metadata objectMeta `json:"metadata,omitempty"`
	Spec     podSpec    `json:"spec"`
}

type jobSpec struct {
	Template podTemplateSpec `json:"template"`
}

type jobTemplateSpec struct {
	Spec jobSpec `json:"spec"`
}

type cronJobSpec struct {
	Schedule          string          `json:"schedule"`
	ConcurrencyPolicy string          `json:"concurrencyPolicy,omitempty"`
	JobTemplate       jobTemplateSpec `json:"jobTemplate"`
}

type cronJob struct {
	APIVersion string      `json:"apiVersion,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	Metadata   objectMeta  `json:"metadata"`
	Spec       cronJobSpec `json:"spec"`
}

type cronJobList struct {
	Metadata listMeta  `json:"metadata"`
	Items    []cronJob `json:"items"`
}

// firstContainer 返回第一个容器，没有时返回nil
func (c *cronJob) firstContainer() *container {
	containers := c.Spec.JobTemplate.Spec.Template.Spec.Containers
	if len(containers) == 0 {
		return nil
	}
	return &containers[0]
}
