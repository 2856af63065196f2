package circleci

import "time"

// ListResponse is the standard v2 list envelope: a page of items plus the
// token selecting the next page. An empty NextPageToken marks the last page.
type ListResponse[T any] struct {
	Items         []T    `json:"items"                     yaml:"items"`
	NextPageToken string `json:"next_page_token,omitempty" yaml:"next_page_token,omitempty"`
}

// MessageResponse represents an API acknowledgment carrying only a message.
type MessageResponse struct {
	Message string `json:"message" yaml:"message"`
}

// User represents a CircleCI user. The v1.1 "me" endpoint fills the account
// fields; the v2 "user/:id" endpoint fills only ID, Login and Name.
type User struct {
	ID            string     `json:"id,omitempty"             yaml:"id,omitempty"`
	Login         string     `json:"login,omitempty"          yaml:"login,omitempty"`
	Name          string     `json:"name,omitempty"           yaml:"name,omitempty"`
	SelectedEmail string     `json:"selected_email,omitempty" yaml:"selected_email,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty"     yaml:"avatar_url,omitempty"`
	Student       bool       `json:"student,omitempty"        yaml:"student,omitempty"`
	SignInCount   int        `json:"sign_in_count,omitempty"  yaml:"sign_in_count,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"     yaml:"created_at,omitempty"`
}

// Collaboration represents an organization the authenticated user can act on.
type Collaboration struct {
	ID        string `json:"id,omitempty"         yaml:"id,omitempty"`
	VCSType   string `json:"vcs-type"             yaml:"vcs-type"`
	Name      string `json:"name"                 yaml:"name"`
	Slug      string `json:"slug,omitempty"       yaml:"slug,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
}

// Repo represents a repository visible to the authenticated user, whether or
// not it is followed on CircleCI.
type Repo struct {
	Username      string `json:"username"                 yaml:"username"`
	Name          string `json:"name"                     yaml:"name"`
	VCSURL        string `json:"vcs_url"                  yaml:"vcs_url"`
	VCSType       string `json:"vcs_type,omitempty"       yaml:"vcs_type,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty" yaml:"default_branch,omitempty"`
	Admin         bool   `json:"admin,omitempty"          yaml:"admin,omitempty"`
	Following     bool   `json:"following,omitempty"      yaml:"following,omitempty"`
}

// Project represents a v2 project.
type Project struct {
	ID               string      `json:"id"                yaml:"id"`
	Slug             string      `json:"slug"              yaml:"slug"`
	Name             string      `json:"name"              yaml:"name"`
	OrganizationName string      `json:"organization_name" yaml:"organization_name"`
	OrganizationSlug string      `json:"organization_slug" yaml:"organization_slug"`
	OrganizationID   string      `json:"organization_id"   yaml:"organization_id"`
	VCSInfo          *ProjectVCS `json:"vcs_info,omitempty" yaml:"vcs_info,omitempty"`
}

// ProjectVCS represents VCS details of a v2 project.
type ProjectVCS struct {
	VCSURL        string `json:"vcs_url"        yaml:"vcs_url"`
	Provider      string `json:"provider"       yaml:"provider"`
	DefaultBranch string `json:"default_branch" yaml:"default_branch"`
}

// ProjectSummary represents an entry of the v1.1 followed-projects listing.
type ProjectSummary struct {
	Username      string `json:"username"                 yaml:"username"`
	Reponame      string `json:"reponame"                 yaml:"reponame"`
	VCSURL        string `json:"vcs_url"                  yaml:"vcs_url"`
	VCSType       string `json:"vcs_type,omitempty"       yaml:"vcs_type,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty" yaml:"default_branch,omitempty"`
	Language      string `json:"language,omitempty"       yaml:"language,omitempty"`
	Followed      bool   `json:"followed,omitempty"       yaml:"followed,omitempty"`
	OSS           bool   `json:"oss,omitempty"            yaml:"oss,omitempty"`
}

// ProjectSettings represents the advanced settings of a v1.1 project. The
// settings payload is open-ended; FeatureFlags carries the toggles verbatim.
type ProjectSettings struct {
	VCSURL        string                 `json:"vcs_url,omitempty"        yaml:"vcs_url,omitempty"`
	DefaultBranch string                 `json:"default_branch,omitempty" yaml:"default_branch,omitempty"`
	Following     bool                   `json:"following,omitempty"      yaml:"following,omitempty"`
	FeatureFlags  map[string]interface{} `json:"feature_flags,omitempty"  yaml:"feature_flags,omitempty"`
}

// FollowResult represents the response to following a project.
type FollowResult struct {
	Followed   bool   `json:"followed"              yaml:"followed"`
	FirstBuild *Build `json:"first_build,omitempty" yaml:"first_build,omitempty"`
}

// Build represents a v1.1 build. Jobs started by v2 pipelines still surface
// here with their workflow grouping attached.
type Build struct {
	BuildNum        int            `json:"build_num"                   yaml:"build_num"`
	BuildURL        string         `json:"build_url,omitempty"         yaml:"build_url,omitempty"`
	Username        string         `json:"username,omitempty"          yaml:"username,omitempty"`
	Reponame        string         `json:"reponame,omitempty"          yaml:"reponame,omitempty"`
	Branch          string         `json:"branch,omitempty"            yaml:"branch,omitempty"`
	VCSRevision     string         `json:"vcs_revision,omitempty"      yaml:"vcs_revision,omitempty"`
	VCSTag          string         `json:"vcs_tag,omitempty"           yaml:"vcs_tag,omitempty"`
	VCSType         string         `json:"vcs_type,omitempty"          yaml:"vcs_type,omitempty"`
	VCSURL          string         `json:"vcs_url,omitempty"           yaml:"vcs_url,omitempty"`
	Subject         string         `json:"subject,omitempty"           yaml:"subject,omitempty"`
	CommitterName   string         `json:"committer_name,omitempty"    yaml:"committer_name,omitempty"`
	CommitterEmail  string         `json:"committer_email,omitempty"   yaml:"committer_email,omitempty"`
	Why             string         `json:"why,omitempty"               yaml:"why,omitempty"`
	Lifecycle       string         `json:"lifecycle,omitempty"         yaml:"lifecycle,omitempty"`
	Outcome         string         `json:"outcome,omitempty"           yaml:"outcome,omitempty"`
	Status          string         `json:"status,omitempty"            yaml:"status,omitempty"`
	Canceled        bool           `json:"canceled,omitempty"          yaml:"canceled,omitempty"`
	Failed          *bool          `json:"failed,omitempty"            yaml:"failed,omitempty"`
	Parallel        int            `json:"parallel,omitempty"          yaml:"parallel,omitempty"`
	RetryOf         *int           `json:"retry_of,omitempty"          yaml:"retry_of,omitempty"`
	QueuedAt        *time.Time     `json:"queued_at,omitempty"         yaml:"queued_at,omitempty"`
	StartTime       *time.Time     `json:"start_time,omitempty"        yaml:"start_time,omitempty"`
	StopTime        *time.Time     `json:"stop_time,omitempty"         yaml:"stop_time,omitempty"`
	BuildTimeMillis int64          `json:"build_time_millis,omitempty" yaml:"build_time_millis,omitempty"`
	Workflows       *BuildWorkflow `json:"workflows,omitempty"         yaml:"workflows,omitempty"`
}

// BuildWorkflow represents the workflow grouping attached to a v1.1 build.
type BuildWorkflow struct {
	JobName        string   `json:"job_name"                   yaml:"job_name"`
	JobID          string   `json:"job_id"                     yaml:"job_id"`
	WorkflowName   string   `json:"workflow_name"              yaml:"workflow_name"`
	WorkflowID     string   `json:"workflow_id"                yaml:"workflow_id"`
	WorkspaceID    string   `json:"workspace_id,omitempty"     yaml:"workspace_id,omitempty"`
	UpstreamJobIDs []string `json:"upstream_job_ids,omitempty" yaml:"upstream_job_ids,omitempty"`
}

// Artifact represents a file produced by a build.
type Artifact struct {
	Path       string `json:"path"                  yaml:"path"`
	PrettyPath string `json:"pretty_path,omitempty" yaml:"pretty_path,omitempty"`
	NodeIndex  int    `json:"node_index"            yaml:"node_index"`
	URL        string `json:"url"                   yaml:"url"`
}

// TestMetadata represents a single test result recorded for a build.
type TestMetadata struct {
	Classname  string  `json:"classname"             yaml:"classname"`
	Name       string  `json:"name"                  yaml:"name"`
	File       string  `json:"file,omitempty"        yaml:"file,omitempty"`
	Result     string  `json:"result"                yaml:"result"`
	RunTime    float64 `json:"run_time"              yaml:"run_time"`
	Message    string  `json:"message,omitempty"     yaml:"message,omitempty"`
	Source     string  `json:"source,omitempty"      yaml:"source,omitempty"`
	SourceType string  `json:"source_type,omitempty" yaml:"source_type,omitempty"`
}

// CheckoutKey represents a project checkout key.
type CheckoutKey struct {
	PublicKey   string     `json:"public_key"     yaml:"public_key"`
	Type        string     `json:"type"           yaml:"type"`
	Fingerprint string     `json:"fingerprint"    yaml:"fingerprint"`
	Preferred   bool       `json:"preferred"      yaml:"preferred"`
	Time        *time.Time `json:"time,omitempty" yaml:"time,omitempty"`
}

// EnvVar represents a project environment variable. Values returned by the
// API are masked to their last four characters.
type EnvVar struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Pipeline represents a v2 pipeline.
type Pipeline struct {
	ID          string           `json:"id"                     yaml:"id"`
	Number      int64            `json:"number"                 yaml:"number"`
	ProjectSlug string           `json:"project_slug"           yaml:"project_slug"`
	State       string           `json:"state"                  yaml:"state"`
	CreatedAt   time.Time        `json:"created_at"             yaml:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"   yaml:"updated_at,omitempty"`
	Trigger     *PipelineTrigger `json:"trigger,omitempty"      yaml:"trigger,omitempty"`
	VCS         *PipelineVCS     `json:"vcs,omitempty"          yaml:"vcs,omitempty"`
	Errors      []PipelineError  `json:"errors,omitempty"       yaml:"errors,omitempty"`
}

// PipelineError represents a configuration or plan error attached to a
// pipeline.
type PipelineError struct {
	Type    string `json:"type"    yaml:"type"`
	Message string `json:"message" yaml:"message"`
}

// PipelineTrigger represents what started a pipeline.
type PipelineTrigger struct {
	Type       string        `json:"type"        yaml:"type"`
	ReceivedAt time.Time     `json:"received_at" yaml:"received_at"`
	Actor      *TriggerActor `json:"actor,omitempty" yaml:"actor,omitempty"`
}

// TriggerActor represents the user that triggered a pipeline.
type TriggerActor struct {
	Login     string `json:"login"                yaml:"login"`
	AvatarURL string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
}

// PipelineVCS represents the VCS state a pipeline was created from.
type PipelineVCS struct {
	ProviderName        string     `json:"provider_name"                   yaml:"provider_name"`
	TargetRepositoryURL string     `json:"target_repository_url,omitempty" yaml:"target_repository_url,omitempty"`
	OriginRepositoryURL string     `json:"origin_repository_url,omitempty" yaml:"origin_repository_url,omitempty"`
	Revision            string     `json:"revision"                        yaml:"revision"`
	Branch              string     `json:"branch,omitempty"                yaml:"branch,omitempty"`
	Tag                 string     `json:"tag,omitempty"                   yaml:"tag,omitempty"`
	ReviewID            string     `json:"review_id,omitempty"             yaml:"review_id,omitempty"`
	ReviewURL           string     `json:"review_url,omitempty"            yaml:"review_url,omitempty"`
	Commit              *VCSCommit `json:"commit,omitempty"                yaml:"commit,omitempty"`
}

// VCSCommit represents the commit a pipeline was created from.
type VCSCommit struct {
	Subject string `json:"subject"        yaml:"subject"`
	Body    string `json:"body,omitempty" yaml:"body,omitempty"`
}

// PipelineConfig represents the configuration of a pipeline, in source and
// compiled form.
type PipelineConfig struct {
	Source              string `json:"source"                          yaml:"source"`
	Compiled            string `json:"compiled,omitempty"              yaml:"compiled,omitempty"`
	SetupConfig         string `json:"setup-config,omitempty"          yaml:"setup-config,omitempty"`
	CompiledSetupConfig string `json:"compiled-setup-config,omitempty" yaml:"compiled-setup-config,omitempty"`
}

// Workflow represents a v2 workflow.
type Workflow struct {
	ID             string     `json:"id"                    yaml:"id"`
	Name           string     `json:"name"                  yaml:"name"`
	Status         string     `json:"status"                yaml:"status"`
	PipelineID     string     `json:"pipeline_id"           yaml:"pipeline_id"`
	PipelineNumber int64      `json:"pipeline_number"       yaml:"pipeline_number"`
	ProjectSlug    string     `json:"project_slug"          yaml:"project_slug"`
	StartedBy      string     `json:"started_by,omitempty"  yaml:"started_by,omitempty"`
	CanceledBy     string     `json:"canceled_by,omitempty" yaml:"canceled_by,omitempty"`
	ErroredBy      string     `json:"errored_by,omitempty"  yaml:"errored_by,omitempty"`
	Tag            string     `json:"tag,omitempty"         yaml:"tag,omitempty"`
	CreatedAt      time.Time  `json:"created_at"            yaml:"created_at"`
	StoppedAt      *time.Time `json:"stopped_at,omitempty"  yaml:"stopped_at,omitempty"`
}

// WorkflowJob represents a job entry within a workflow.
type WorkflowJob struct {
	ID                string     `json:"id"                            yaml:"id"`
	Name              string     `json:"name"                          yaml:"name"`
	Type              string     `json:"type,omitempty"                yaml:"type,omitempty"`
	Status            string     `json:"status"                        yaml:"status"`
	JobNumber         int64      `json:"job_number,omitempty"          yaml:"job_number,omitempty"`
	ProjectSlug       string     `json:"project_slug,omitempty"        yaml:"project_slug,omitempty"`
	Dependencies      []string   `json:"dependencies,omitempty"        yaml:"dependencies,omitempty"`
	ApprovalRequestID string     `json:"approval_request_id,omitempty" yaml:"approval_request_id,omitempty"`
	ApprovedBy        string     `json:"approved_by,omitempty"         yaml:"approved_by,omitempty"`
	CanceledBy        string     `json:"canceled_by,omitempty"         yaml:"canceled_by,omitempty"`
	StartedAt         *time.Time `json:"started_at,omitempty"          yaml:"started_at,omitempty"`
	StoppedAt         *time.Time `json:"stopped_at,omitempty"          yaml:"stopped_at,omitempty"`
}

// Job represents v2 job details.
type Job struct {
	Number         int64           `json:"number"                    yaml:"number"`
	Name           string          `json:"name"                      yaml:"name"`
	Status         string          `json:"status"                    yaml:"status"`
	WebURL         string          `json:"web_url,omitempty"         yaml:"web_url,omitempty"`
	Parallelism    int             `json:"parallelism,omitempty"     yaml:"parallelism,omitempty"`
	Duration       int64           `json:"duration,omitempty"        yaml:"duration,omitempty"`
	Project        *JobProject     `json:"project,omitempty"         yaml:"project,omitempty"`
	Executor       *JobExecutor    `json:"executor,omitempty"        yaml:"executor,omitempty"`
	Pipeline       *JobPipelineRef `json:"pipeline,omitempty"        yaml:"pipeline,omitempty"`
	LatestWorkflow *JobWorkflowRef `json:"latest_workflow,omitempty" yaml:"latest_workflow,omitempty"`
	Organization   *JobOrg         `json:"organization,omitempty"    yaml:"organization,omitempty"`
	Contexts       []JobContextRef `json:"contexts,omitempty"        yaml:"contexts,omitempty"`
	Messages       []JobMessage    `json:"messages,omitempty"        yaml:"messages,omitempty"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"      yaml:"created_at,omitempty"`
	QueuedAt       *time.Time      `json:"queued_at,omitempty"       yaml:"queued_at,omitempty"`
	StartedAt      *time.Time      `json:"started_at,omitempty"      yaml:"started_at,omitempty"`
	StoppedAt      *time.Time      `json:"stopped_at,omitempty"      yaml:"stopped_at,omitempty"`
}

// JobProject represents the project reference embedded in job details.
type JobProject struct {
	ID          string `json:"id"                     yaml:"id"`
	Slug        string `json:"slug"                   yaml:"slug"`
	Name        string `json:"name"                   yaml:"name"`
	ExternalURL string `json:"external_url,omitempty" yaml:"external_url,omitempty"`
}

// JobExecutor represents the executor a job ran on.
type JobExecutor struct {
	Type          string `json:"type"                     yaml:"type"`
	ResourceClass string `json:"resource_class,omitempty" yaml:"resource_class,omitempty"`
}

// JobPipelineRef references the pipeline a job belongs to.
type JobPipelineRef struct {
	ID string `json:"id" yaml:"id"`
}

// JobWorkflowRef references the workflow a job last ran in.
type JobWorkflowRef struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// JobOrg references the organization owning a job's project.
type JobOrg struct {
	Name string `json:"name" yaml:"name"`
}

// JobContextRef references a context a job ran with.
type JobContextRef struct {
	Name string `json:"name" yaml:"name"`
}

// JobMessage represents an informational message attached to a job.
type JobMessage struct {
	Type    string `json:"type"              yaml:"type"`
	Message string `json:"message"           yaml:"message"`
	Reason  string `json:"reason,omitempty"  yaml:"reason,omitempty"`
}

// Context represents a v2 context.
type Context struct {
	ID        string    `json:"id"         yaml:"id"`
	Name      string    `json:"name"       yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ContextEnvVar represents an environment variable stored in a context. The
// value itself is never returned by the API.
type ContextEnvVar struct {
	Variable  string     `json:"variable"             yaml:"variable"`
	ContextID string     `json:"context_id"           yaml:"context_id"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// ContextOwner identifies the organization or account owning a context.
// Exactly one of ID and Slug should be set.
type ContextOwner struct {
	ID   string `json:"id,omitempty"   yaml:"id,omitempty"`
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Schedule represents a v2 pipeline schedule.
type Schedule struct {
	ID          string                 `json:"id"                     yaml:"id"`
	Name        string                 `json:"name"                   yaml:"name"`
	Description string                 `json:"description,omitempty"  yaml:"description,omitempty"`
	ProjectSlug string                 `json:"project-slug,omitempty" yaml:"project-slug,omitempty"`
	Timetable   *Timetable             `json:"timetable,omitempty"    yaml:"timetable,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"   yaml:"parameters,omitempty"`
	Actor       *ScheduleActor         `json:"actor,omitempty"        yaml:"actor,omitempty"`
	CreatedAt   *time.Time             `json:"created-at,omitempty"   yaml:"created-at,omitempty"`
	UpdatedAt   *time.Time             `json:"updated-at,omitempty"   yaml:"updated-at,omitempty"`
}

// ScheduleActor represents the user schedules attribute their pipelines to.
type ScheduleActor struct {
	ID    string `json:"id"              yaml:"id"`
	Login string `json:"login,omitempty" yaml:"login,omitempty"`
	Name  string `json:"name,omitempty"  yaml:"name,omitempty"`
}

// Timetable describes when a schedule fires.
type Timetable struct {
	PerHour     int      `json:"per-hour"                yaml:"per-hour"`
	HoursOfDay  []int    `json:"hours-of-day"            yaml:"hours-of-day"`
	DaysOfWeek  []string `json:"days-of-week,omitempty"  yaml:"days-of-week,omitempty"`
	DaysOfMonth []int    `json:"days-of-month,omitempty" yaml:"days-of-month,omitempty"`
	Months      []string `json:"months,omitempty"        yaml:"months,omitempty"`
}

// InsightsBranches represents the branch inventory tracked by insights.
type InsightsBranches struct {
	OrgID     string   `json:"org_id,omitempty"     yaml:"org_id,omitempty"`
	ProjectID string   `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Branches  []string `json:"branches"             yaml:"branches"`
}

// DurationMetrics represents duration aggregates in seconds.
type DurationMetrics struct {
	Min               int64   `json:"min"                yaml:"min"`
	Mean              int64   `json:"mean"               yaml:"mean"`
	Median            int64   `json:"median"             yaml:"median"`
	P95               int64   `json:"p95"                yaml:"p95"`
	Max               int64   `json:"max"                yaml:"max"`
	StandardDeviation float64 `json:"standard_deviation" yaml:"standard_deviation"`
}

// WorkflowMetrics represents aggregated workflow counters over a reporting
// window.
type WorkflowMetrics struct {
	TotalRuns        int64           `json:"total_runs"               yaml:"total_runs"`
	SuccessfulRuns   int64           `json:"successful_runs"          yaml:"successful_runs"`
	FailedRuns       int64           `json:"failed_runs"              yaml:"failed_runs"`
	SuccessRate      float64         `json:"success_rate"             yaml:"success_rate"`
	Throughput       float64         `json:"throughput"               yaml:"throughput"`
	MTTR             int64           `json:"mttr,omitempty"           yaml:"mttr,omitempty"`
	TotalRecoveries  int64           `json:"total_recoveries,omitempty" yaml:"total_recoveries,omitempty"`
	TotalCreditsUsed int64           `json:"total_credits_used"       yaml:"total_credits_used"`
	DurationMetrics  DurationMetrics `json:"duration_metrics"         yaml:"duration_metrics"`
}

// WorkflowMetricsSummary represents one workflow's aggregated metrics.
type WorkflowMetricsSummary struct {
	Name        string          `json:"name"                 yaml:"name"`
	WindowStart time.Time       `json:"window_start"         yaml:"window_start"`
	WindowEnd   time.Time       `json:"window_end"           yaml:"window_end"`
	ProjectID   string          `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Metrics     WorkflowMetrics `json:"metrics"              yaml:"metrics"`
}

// WorkflowRun represents a single recent run of a workflow.
type WorkflowRun struct {
	ID          string     `json:"id"                     yaml:"id"`
	Branch      string     `json:"branch,omitempty"       yaml:"branch,omitempty"`
	Status      string     `json:"status"                 yaml:"status"`
	Duration    int64      `json:"duration"               yaml:"duration"`
	CreditsUsed int64      `json:"credits_used,omitempty" yaml:"credits_used,omitempty"`
	CreatedAt   time.Time  `json:"created_at"             yaml:"created_at"`
	StoppedAt   *time.Time `json:"stopped_at,omitempty"   yaml:"stopped_at,omitempty"`
}

// JobMetrics represents aggregated job counters over a reporting window.
type JobMetrics struct {
	TotalRuns        int64           `json:"total_runs"         yaml:"total_runs"`
	SuccessfulRuns   int64           `json:"successful_runs"    yaml:"successful_runs"`
	FailedRuns       int64           `json:"failed_runs"        yaml:"failed_runs"`
	SuccessRate      float64         `json:"success_rate"       yaml:"success_rate"`
	Throughput       float64         `json:"throughput"         yaml:"throughput"`
	TotalCreditsUsed int64           `json:"total_credits_used" yaml:"total_credits_used"`
	DurationMetrics  DurationMetrics `json:"duration_metrics"   yaml:"duration_metrics"`
}

// JobMetricsSummary represents one job's aggregated metrics within a
// workflow.
type JobMetricsSummary struct {
	Name        string     `json:"name"         yaml:"name"`
	WindowStart time.Time  `json:"window_start" yaml:"window_start"`
	WindowEnd   time.Time  `json:"window_end"   yaml:"window_end"`
	Metrics     JobMetrics `json:"metrics"      yaml:"metrics"`
}

// JobRun represents a single recent run of a job.
type JobRun struct {
	ID          string     `json:"id"                     yaml:"id"`
	Status      string     `json:"status"                 yaml:"status"`
	Duration    int64      `json:"duration"               yaml:"duration"`
	CreditsUsed int64      `json:"credits_used,omitempty" yaml:"credits_used,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"   yaml:"started_at,omitempty"`
	StoppedAt   *time.Time `json:"stopped_at,omitempty"   yaml:"stopped_at,omitempty"`
}

// TestCaseStats represents one test case in a test-metrics report.
type TestCaseStats struct {
	TestName    string  `json:"test_name"          yaml:"test_name"`
	Classname   string  `json:"classname,omitempty" yaml:"classname,omitempty"`
	File        string  `json:"file,omitempty"     yaml:"file,omitempty"`
	JobName     string  `json:"job_name,omitempty" yaml:"job_name,omitempty"`
	Source      string  `json:"source,omitempty"   yaml:"source,omitempty"`
	TotalRuns   int64   `json:"total_runs"         yaml:"total_runs"`
	FailedRuns  int64   `json:"failed_runs"        yaml:"failed_runs"`
	Flaky       bool    `json:"flaky"              yaml:"flaky"`
	P95Duration float64 `json:"p95_duration"       yaml:"p95_duration"`
}

// TestMetricsReport represents the aggregated test metrics of a workflow.
type TestMetricsReport struct {
	AverageTestCount     float64         `json:"average_test_count"      yaml:"average_test_count"`
	TotalTestRuns        int64           `json:"total_test_runs"         yaml:"total_test_runs"`
	MostFailedTests      []TestCaseStats `json:"most_failed_tests"       yaml:"most_failed_tests"`
	MostFailedTestsExtra int64           `json:"most_failed_tests_extra" yaml:"most_failed_tests_extra"`
	SlowestTests         []TestCaseStats `json:"slowest_tests"           yaml:"slowest_tests"`
	SlowestTestsExtra    int64           `json:"slowest_tests_extra"     yaml:"slowest_tests_extra"`
}

// TriggerPipelineRequest represents a request to trigger a v2 pipeline.
type TriggerPipelineRequest struct {
	// Branch selects the branch to build; mutually exclusive with Tag.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
	// Tag selects the git tag to build; mutually exclusive with Branch.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
	// Parameters are pipeline parameters passed to the configuration.
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ContinuePipelineRequest represents a request to continue a setup pipeline.
type ContinuePipelineRequest struct {
	// ContinuationKey is the key handed to the setup workflow.
	ContinuationKey string `json:"continuation-key" yaml:"continuation-key"`
	// Configuration is the full config source to continue with.
	Configuration string `json:"configuration" yaml:"configuration"`
	// Parameters are pipeline parameters passed to the continued config.
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// RerunWorkflowRequest represents a request to rerun a workflow. The zero
// value reruns the workflow from the beginning.
type RerunWorkflowRequest struct {
	// Jobs restricts the rerun to the given job IDs.
	Jobs []string `json:"jobs,omitempty" yaml:"jobs,omitempty"`
	// FromFailed reruns only failed jobs and their dependents; mutually
	// exclusive with Jobs.
	FromFailed bool `json:"from_failed,omitempty" yaml:"from_failed,omitempty"`
	// SparseTree reruns only the given Jobs plus their dependencies.
	SparseTree bool `json:"sparse_tree,omitempty" yaml:"sparse_tree,omitempty"`
	// EnableSSH reruns the workflow with SSH access enabled on its jobs.
	EnableSSH bool `json:"enable_ssh,omitempty" yaml:"enable_ssh,omitempty"`
}

// RerunWorkflowResponse represents the workflow created by a rerun.
type RerunWorkflowResponse struct {
	WorkflowID string `json:"workflow_id" yaml:"workflow_id"`
}

// TriggerBuildRequest represents a request to trigger a v1.1 build.
type TriggerBuildRequest struct {
	// Revision is the git revision to build; mutually exclusive with Tag.
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`
	// Tag is the git tag to build; mutually exclusive with Revision.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
	// Parallel overrides the container count for 1.0 builds.
	Parallel int `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	// BuildParameters are merged flat into the request body and exported to
	// the build environment.
	BuildParameters map[string]interface{} `json:"-" yaml:"-"`
}

// CreateContextRequest represents a request to create a context.
type CreateContextRequest struct {
	// Name is the context name, unique within the owner.
	Name string `json:"name" yaml:"name"`
	// Owner identifies the owning organization or account.
	Owner ContextOwner `json:"owner" yaml:"owner"`
}

// CreateScheduleRequest represents a request to create a schedule.
type CreateScheduleRequest struct {
	// Name is the schedule name, unique within the project.
	Name string `json:"name" yaml:"name"`
	// Timetable describes when the schedule fires.
	Timetable Timetable `json:"timetable" yaml:"timetable"`
	// AttributionActor is "current" or "system".
	AttributionActor string `json:"attribution-actor" yaml:"attribution-actor"`
	// Parameters are pipeline parameters for the scheduled runs.
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Description optionally documents the schedule.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// UpdateScheduleRequest represents a partial schedule update; nil and zero
// fields are left unchanged.
type UpdateScheduleRequest struct {
	Name             string                 `json:"name,omitempty"              yaml:"name,omitempty"`
	Timetable        *Timetable             `json:"timetable,omitempty"         yaml:"timetable,omitempty"`
	AttributionActor string                 `json:"attribution-actor,omitempty" yaml:"attribution-actor,omitempty"`
	Parameters       map[string]interface{} `json:"parameters,omitempty"        yaml:"parameters,omitempty"`
	Description      string                 `json:"description,omitempty"       yaml:"description,omitempty"`
}

// RecentBuildsOptions narrows the recent-builds listing.
type RecentBuildsOptions struct {
	// Limit caps the number of builds returned; zero returns the default
	// page of 30, values above 100 are fetched in per-page chunks of 100.
	Limit int
	// Offset skips builds from the top of the listing.
	Offset int
}

// BuildSummaryOptions narrows a project build-summary listing.
type BuildSummaryOptions struct {
	// Branch scopes the summary to one branch.
	Branch string
	// Limit caps the number of builds returned.
	Limit int
	// Offset skips builds from the top of the listing.
	Offset int
	// Filter narrows by outcome: completed, successful, failed or running.
	Filter string
	// Shallow requests the abbreviated payload, which is much cheaper.
	Shallow bool
}

// LatestArtifactsOptions narrows a latest-artifacts listing.
type LatestArtifactsOptions struct {
	// Branch selects the branch whose latest build is inspected.
	Branch string
	// Filter narrows by outcome: completed, successful or failed. Empty
	// defaults to completed.
	Filter string
}
