package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/circleci-client/internal/client"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

func TestSchedulesClient_List(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v2/project/gh/acme/widgets/schedule", http.StatusOK, map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": "sched-1", "name": "nightly"},
		},
		"next_page_token": "",
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	page, err := client.Schedules().List(context.Background(), "gh/acme/widgets", nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "nightly", page.Items[0].Name)
}

func TestSchedulesClient_List_InvalidSlug(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(FailHandler(t))
	defer server.Close()

	client := NewTestClient(server.URL)

	page, err := client.Schedules().List(context.Background(), "acme", nil)
	require.Error(t, err)
	assert.Nil(t, page)
	assert.True(t, errors.Is(err, circleci.ErrInvalidProjectSlug))
}

func TestSchedulesClient_ListAll(t *testing.T) {
	t.Parallel()

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requests++

		assert.Equal(t, "/v2/project/gh/acme/widgets/schedule", request.URL.Path)

		writer.Header().Set("Content-Type", "application/json")

		if requests == 1 {
			_, _ = writer.Write([]byte(`{"items": [{"id": "sched-1", "name": "nightly"}], "next_page_token": "more"}`))

			return
		}

		assert.Equal(t, "more", request.URL.Query().Get("page-token"))
		_, _ = writer.Write([]byte(`{"items": [{"id": "sched-2", "name": "weekly"}], "next_page_token": ""}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	schedules, err := client.Schedules().ListAll(context.Background(), "gh/acme/widgets", nil)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, "weekly", schedules[1].Name)
}

func TestSchedulesClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v2/schedule/sched-1", http.StatusOK, map[string]interface{}{
		"id":   "sched-1",
		"name": "nightly",
		"timetable": map[string]interface{}{
			"per-hour":     1,
			"hours-of-day": []int{3},
			"days-of-week": []string{"MON", "WED"},
		},
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	schedule, err := client.Schedules().Get(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, "nightly", schedule.Name)
	require.NotNil(t, schedule.Timetable)
	assert.Equal(t, []int{3}, schedule.Timetable.HoursOfDay)
	assert.Equal(t, []string{"MON", "WED"}, schedule.Timetable.DaysOfWeek)
}

func TestSchedulesClient_Create(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "POST", request.Method)
		assert.Equal(t, "/v2/project/gh/acme/widgets/schedule", request.URL.Path)

		var body map[string]interface{}

		DecodeRequestBody(t, request, &body)
		assert.Equal(t, "nightly", body["name"])
		assert.Equal(t, "current", body["attribution-actor"])

		timetable, ok := body["timetable"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), timetable["per-hour"])

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusCreated)
		_, _ = writer.Write([]byte(`{"id": "sched-1", "name": "nightly"}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	schedule, err := client.Schedules().Create(context.Background(), "gh/acme/widgets", &circleci.CreateScheduleRequest{
		Name:             "nightly",
		AttributionActor: "current",
		Timetable: circleci.Timetable{
			PerHour:    1,
			HoursOfDay: []int{3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "sched-1", schedule.ID)
}

func TestSchedulesClient_Update(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "PATCH", request.Method)
		assert.Equal(t, "/v2/schedule/sched-1", request.URL.Path)

		var body map[string]interface{}

		DecodeRequestBody(t, request, &body)
		assert.Equal(t, "nightly-eu", body["name"])

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"id": "sched-1", "name": "nightly-eu"}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	schedule, err := client.Schedules().Update(context.Background(), "sched-1", &circleci.UpdateScheduleRequest{
		Name: "nightly-eu",
	})
	require.NoError(t, err)
	assert.Equal(t, "nightly-eu", schedule.Name)
}

func TestSchedulesClient_Delete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "DELETE", "/v2/schedule/sched-1", http.StatusOK, map[string]string{
		"message": "Deleted.",
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	message, err := client.Schedules().Delete(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted.", message.Message)
}
