package circleci

import (
	"context"
	"encoding/json"
	"net/url"
)

// RawClient dispatches a single request against either API version without
// going through a typed resource client. It is the escape hatch for endpoints
// the typed surface does not cover yet; the returned bytes are the raw
// response body of a 2xx response.
type RawClient interface {
	Raw(ctx context.Context, method string, version APIVersion, path string, query url.Values, body interface{}) (json.RawMessage, error)
}

// UsersClient provides access to user and collaboration endpoints.
type UsersClient interface {
	// Me returns the authenticated user (v1.1 "me").
	Me(ctx context.Context) (*User, error)
	// Get returns a user by ID (v2 "user/:id").
	Get(ctx context.Context, userID string) (*User, error)
	// Collaborations returns the organizations the authenticated user can
	// collaborate on (v2 "me/collaborations").
	Collaborations(ctx context.Context) ([]Collaboration, error)
	// Repos lists the repositories accessible to the authenticated user for
	// one VCS provider (v1.1 "user/repos/:vcs-type"). Unlike Projects().List
	// this includes repositories the user is not following.
	Repos(ctx context.Context, vcsType string, opts *PageOptions) ([]Repo, error)
}

// ProjectsClient provides access to project endpoints across both API
// versions. Methods taking vcsType/org/repo operate on v1.1 paths; Get takes
// a v2 project slug.
type ProjectsClient interface {
	// Get returns a project by slug (v2 "project/:slug").
	Get(ctx context.Context, projectSlug string) (*Project, error)
	// List returns the projects the authenticated user follows (v1.1
	// "projects").
	List(ctx context.Context) ([]ProjectSummary, error)
	// Follow starts following a project (v1.1 "project/:slug/follow").
	Follow(ctx context.Context, vcsType, org, repo string) (*FollowResult, error)
	// BuildSummary returns recent build summaries for a project, optionally
	// scoped to a branch (v1.1 "project/:slug[/tree/:branch]").
	BuildSummary(ctx context.Context, vcsType, org, repo string, opts *BuildSummaryOptions) ([]Build, error)
	// Settings returns the advanced settings of a project (v1.1
	// "project/:slug/settings").
	Settings(ctx context.Context, vcsType, org, repo string) (*ProjectSettings, error)
	// UpdateSettings updates advanced settings; the map is sent as the PUT
	// body and may carry any subset of setting keys.
	UpdateSettings(ctx context.Context, vcsType, org, repo string, settings map[string]interface{}) (*ProjectSettings, error)
	// AddSSHKey adds a private SSH key to the project (v1.1
	// "project/:slug/ssh-key"). Hostname may be empty.
	AddSSHKey(ctx context.Context, vcsType, org, repo, hostname, privateKey string) error

	// ListCheckoutKeys returns the project checkout keys (v1.1
	// "project/:slug/checkout-key").
	ListCheckoutKeys(ctx context.Context, vcsType, org, repo string) ([]CheckoutKey, error)
	// CreateCheckoutKey creates a checkout key of the given type, one of
	// "deploy-key" or "github-user-key".
	CreateCheckoutKey(ctx context.Context, vcsType, org, repo, keyType string) (*CheckoutKey, error)
	// GetCheckoutKey returns a single checkout key by fingerprint.
	GetCheckoutKey(ctx context.Context, vcsType, org, repo, fingerprint string) (*CheckoutKey, error)
	// DeleteCheckoutKey deletes a checkout key by fingerprint.
	DeleteCheckoutKey(ctx context.Context, vcsType, org, repo, fingerprint string) (*MessageResponse, error)

	// ListEnvVars returns the project environment variables with masked
	// values (v1.1 "project/:slug/envvar").
	ListEnvVars(ctx context.Context, vcsType, org, repo string) ([]EnvVar, error)
	// AddEnvVar creates an environment variable on the project.
	AddEnvVar(ctx context.Context, vcsType, org, repo, name, value string) (*EnvVar, error)
	// GetEnvVar returns a single environment variable with a masked value.
	GetEnvVar(ctx context.Context, vcsType, org, repo, name string) (*EnvVar, error)
	// DeleteEnvVar deletes an environment variable from the project.
	DeleteEnvVar(ctx context.Context, vcsType, org, repo, name string) (*MessageResponse, error)
}

// BuildsClient provides access to the legacy v1.1 build endpoints, including
// artifact listing and download.
type BuildsClient interface {
	// Recent returns recently built jobs across all followed projects (v1.1
	// "recent-builds").
	Recent(ctx context.Context, opts *RecentBuildsOptions) ([]Build, error)
	// Get returns full details for a single build (v1.1
	// "project/:slug/:build-num").
	Get(ctx context.Context, vcsType, org, repo string, buildNum int) (*Build, error)
	// Retry retries a build; with ssh true the retry keeps an SSH connection
	// open ("project/:slug/:build-num/retry" or ".../ssh").
	Retry(ctx context.Context, vcsType, org, repo string, buildNum int, ssh bool) (*Build, error)
	// Cancel cancels a running build ("project/:slug/:build-num/cancel").
	Cancel(ctx context.Context, vcsType, org, repo string, buildNum int) (*Build, error)
	// AddSSHUser adds the authenticated user's SSH key to a running build
	// ("project/:slug/:build-num/ssh-users").
	AddSSHUser(ctx context.Context, vcsType, org, repo string, buildNum int) (*Build, error)
	// Trigger triggers a new build of a branch (v1.1
	// "project/:slug/tree/:branch").
	Trigger(ctx context.Context, vcsType, org, repo, branch string, req *TriggerBuildRequest) (*Build, error)
	// Artifacts lists the artifacts produced by a build
	// ("project/:slug/:build-num/artifacts").
	Artifacts(ctx context.Context, vcsType, org, repo string, buildNum int) ([]Artifact, error)
	// LatestArtifacts lists the artifacts of the latest build, filtered by
	// completion status ("project/:slug/latest/artifacts").
	LatestArtifacts(ctx context.Context, vcsType, org, repo string, opts *LatestArtifactsOptions) ([]Artifact, error)
	// TestMetadata returns the test results recorded for a build
	// ("project/:slug/:build-num/tests").
	TestMetadata(ctx context.Context, vcsType, org, repo string, buildNum int) ([]TestMetadata, error)
	// DownloadArtifact streams one artifact URL to destDir. An empty filename
	// selects the last path segment of the URL. Returns the path written.
	DownloadArtifact(ctx context.Context, artifactURL, destDir, filename string) (string, error)
}

// PipelinesClient provides access to the v2 pipeline endpoints.
type PipelinesClient interface {
	// Trigger triggers a pipeline on a project. Branch and Tag in the request
	// are mutually exclusive (v2 "project/:slug/pipeline").
	Trigger(ctx context.Context, projectSlug string, req *TriggerPipelineRequest) (*Pipeline, error)
	// ListForProject returns one page of pipelines for a project (v2
	// "project/:slug/pipeline").
	ListForProject(ctx context.Context, projectSlug string, params *QueryParams) (*ListResponse[Pipeline], error)
	// ListForProjectAll returns all pipelines for a project, following
	// next_page_token until exhaustion or the page ceiling.
	ListForProjectAll(ctx context.Context, projectSlug string, params *QueryParams, opts *PageOptions) ([]Pipeline, error)
	// GetByNumber returns a pipeline by its per-project number (v2
	// "project/:slug/pipeline/:number").
	GetByNumber(ctx context.Context, projectSlug string, number int) (*Pipeline, error)
	// List returns one page of recent pipelines for an organization (v2
	// "pipeline?org-slug=...").
	List(ctx context.Context, params *QueryParams) (*ListResponse[Pipeline], error)
	// Get returns a pipeline by ID (v2 "pipeline/:id").
	Get(ctx context.Context, pipelineID string) (*Pipeline, error)
	// Config returns the configuration of a pipeline (v2
	// "pipeline/:id/config").
	Config(ctx context.Context, pipelineID string) (*PipelineConfig, error)
	// Workflows returns one page of workflows belonging to a pipeline (v2
	// "pipeline/:id/workflow").
	Workflows(ctx context.Context, pipelineID string, params *QueryParams) (*ListResponse[Workflow], error)
	// WorkflowsAll returns all workflows belonging to a pipeline.
	WorkflowsAll(ctx context.Context, pipelineID string, opts *PageOptions) ([]Workflow, error)
	// Continue resumes a setup pipeline with a full configuration (v2
	// "pipeline/continue").
	Continue(ctx context.Context, req *ContinuePipelineRequest) (*MessageResponse, error)
}

// WorkflowsClient provides access to the v2 workflow endpoints.
type WorkflowsClient interface {
	// Get returns a workflow by ID (v2 "workflow/:id").
	Get(ctx context.Context, workflowID string) (*Workflow, error)
	// Jobs returns one page of jobs in a workflow (v2 "workflow/:id/job").
	Jobs(ctx context.Context, workflowID string, params *QueryParams) (*ListResponse[WorkflowJob], error)
	// JobsAll returns all jobs in a workflow.
	JobsAll(ctx context.Context, workflowID string, opts *PageOptions) ([]WorkflowJob, error)
	// Cancel cancels a running workflow (v2 "workflow/:id/cancel").
	Cancel(ctx context.Context, workflowID string) (*MessageResponse, error)
	// Rerun reruns a workflow, either whole, from failed, or for a subset of
	// jobs (v2 "workflow/:id/rerun").
	Rerun(ctx context.Context, workflowID string, req *RerunWorkflowRequest) (*RerunWorkflowResponse, error)
	// ApproveJob approves a pending approval job in a workflow (v2
	// "workflow/:id/approve/:approval-request-id").
	ApproveJob(ctx context.Context, workflowID, approvalRequestID string) (*MessageResponse, error)
}

// JobsClient provides access to the v2 job detail endpoints.
type JobsClient interface {
	// Get returns job details by project slug and job number (v2
	// "project/:slug/job/:number").
	Get(ctx context.Context, projectSlug string, jobNumber int) (*Job, error)
	// Cancel cancels a job by project slug and job number (v2
	// "project/:slug/job/:number/cancel").
	Cancel(ctx context.Context, projectSlug string, jobNumber int) (*MessageResponse, error)
}

// InsightsClient provides access to the v2 insights endpoints. All paths are
// rooted at "insights/:project-slug".
type InsightsClient interface {
	// Branches returns the branches tracked by insights, optionally scoped
	// to one workflow ("insights/:slug/branches").
	Branches(ctx context.Context, projectSlug string, params *QueryParams) (*InsightsBranches, error)
	// WorkflowMetrics returns one page of aggregated workflow metrics
	// ("insights/:slug/workflows").
	WorkflowMetrics(ctx context.Context, projectSlug string, params *QueryParams) (*ListResponse[WorkflowMetricsSummary], error)
	// WorkflowMetricsAll returns all aggregated workflow metrics.
	WorkflowMetricsAll(ctx context.Context, projectSlug string, params *QueryParams, opts *PageOptions) ([]WorkflowMetricsSummary, error)
	// WorkflowRuns returns one page of recent runs of a workflow
	// ("insights/:slug/workflows/:name").
	WorkflowRuns(ctx context.Context, projectSlug, workflowName string, params *QueryParams) (*ListResponse[WorkflowRun], error)
	// WorkflowTestMetrics returns test metrics for a workflow
	// ("insights/:slug/workflows/:name/test-metrics").
	WorkflowTestMetrics(ctx context.Context, projectSlug, workflowName string, params *QueryParams) (*TestMetricsReport, error)
	// JobMetrics returns one page of aggregated job metrics for a workflow
	// ("insights/:slug/workflows/:name/jobs").
	JobMetrics(ctx context.Context, projectSlug, workflowName string, params *QueryParams) (*ListResponse[JobMetricsSummary], error)
	// JobRuns returns one page of recent runs of a job within a workflow
	// ("insights/:slug/workflows/:name/jobs/:job").
	JobRuns(ctx context.Context, projectSlug, workflowName, jobName string, params *QueryParams) (*ListResponse[JobRun], error)
}

// ContextsClient provides access to the v2 context endpoints.
type ContextsClient interface {
	// List returns one page of contexts owned by an organization or account
	// (v2 "context"). Params must carry an owner slug or owner ID.
	List(ctx context.Context, params *QueryParams) (*ListResponse[Context], error)
	// ListAll returns all contexts for the owner.
	ListAll(ctx context.Context, params *QueryParams, opts *PageOptions) ([]Context, error)
	// Get returns a context by ID (v2 "context/:id").
	Get(ctx context.Context, contextID string) (*Context, error)
	// Create creates a context owned by an organization or account (v2
	// "context").
	Create(ctx context.Context, req *CreateContextRequest) (*Context, error)
	// Delete deletes a context by ID.
	Delete(ctx context.Context, contextID string) (*MessageResponse, error)
	// ListEnvVars returns one page of environment variables stored in a
	// context, values omitted (v2 "context/:id/environment-variable").
	ListEnvVars(ctx context.Context, contextID string, params *QueryParams) (*ListResponse[ContextEnvVar], error)
	// AddEnvVar creates or replaces an environment variable in a context
	// (PUT "context/:id/environment-variable/:name").
	AddEnvVar(ctx context.Context, contextID, name, value string) (*ContextEnvVar, error)
	// DeleteEnvVar removes an environment variable from a context.
	DeleteEnvVar(ctx context.Context, contextID, name string) (*MessageResponse, error)
}

// SchedulesClient provides access to the v2 schedule endpoints.
type SchedulesClient interface {
	// List returns one page of schedules for a project (v2
	// "project/:slug/schedule").
	List(ctx context.Context, projectSlug string, params *QueryParams) (*ListResponse[Schedule], error)
	// ListAll returns all schedules for a project.
	ListAll(ctx context.Context, projectSlug string, opts *PageOptions) ([]Schedule, error)
	// Get returns a schedule by ID (v2 "schedule/:id").
	Get(ctx context.Context, scheduleID string) (*Schedule, error)
	// Create creates a schedule on a project (v2 "project/:slug/schedule").
	Create(ctx context.Context, projectSlug string, req *CreateScheduleRequest) (*Schedule, error)
	// Update modifies fields of a schedule (PATCH "schedule/:id").
	Update(ctx context.Context, scheduleID string, req *UpdateScheduleRequest) (*Schedule, error)
	// Delete deletes a schedule by ID.
	Delete(ctx context.Context, scheduleID string) (*MessageResponse, error)
}
