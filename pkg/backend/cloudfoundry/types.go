package cloudfoundry

// v3 API 与 Scheduler API 的JSON结构

type link struct {
	Href string `json:"href"`
}

type pagination struct {
	TotalResults int   `json:"total_results"`
	TotalPages   int   `json:"total_pages"`
	Next         *link `json:"next"`
}

type resource struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

type resourceList struct {
	Pagination pagination `json:"pagination"`
	Resources  []resource `json:"resources"`
}

type environmentVariables struct {
	Var map[string]any `json:"var"`
}

type jobSchedule struct {
	GUID           string `json:"guid,omitempty"`
	Enabled        bool   `json:"enabled"`
	Expression     string `json:"expression"`
	ExpressionType string `json:"expression_type"`
}

type job struct {
	GUID         string        `json:"guid"`
	Name         string        `json:"name"`
	AppGUID      string        `json:"app_guid"`
	SpaceGUID    string        `json:"space_guid,omitempty"`
	Command      string        `json:"command"`
	State        string        `json:"state,omitempty"`
	JobSchedules []jobSchedule `json:"job_schedules,omitempty"`
}

type jobList struct {
	Resources  []job      `json:"resources"`
	Pagination pagination `json:"pagination"`
}

type createJobRequest struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}
