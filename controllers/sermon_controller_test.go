package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gracechapel/churchweb/models"
)

func TestSermonCRUD(t *testing.T) {
	db, r := newTestEnv(t, testConfig(t))
	token := adminToken(t)

	w := doJSON(r, http.MethodPost, "/api/v1/sermons", map[string]interface{}{
		"title":     "Walking in Faith",
		"speaker":   "Pastor John",
		"date":      "2025-06-01",
		"scripture": "Hebrews 11:1",
		"series":    "Faith Foundations",
	}, token)
	requireStatus(t, w, http.StatusCreated)

	var created struct {
		Sermon models.Sermon `json:"sermon"`
	}
	decodeData(t, w, &created)
	require.NotZero(t, created.Sermon.ID)
	require.Equal(t, "Walking in Faith", created.Sermon.Title)

	// Public read
	w = doJSON(r, http.MethodGet, "/api/v1/sermons", nil, "")
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Items []models.Sermon `json:"items"`
	}
	decodeData(t, w, &list)
	require.Len(t, list.Items, 1)

	// Partial update: only the speaker changes
	w = doJSON(r, http.MethodPut, "/api/v1/sermons/1", map[string]interface{}{
		"speaker": "Pastor Mary",
	}, token)
	requireStatus(t, w, http.StatusOK)

	var stored models.Sermon
	require.NoError(t, db.First(&stored, created.Sermon.ID).Error)
	require.Equal(t, "Pastor Mary", stored.Speaker)
	require.Equal(t, "Walking in Faith", stored.Title)
	require.Equal(t, "Hebrews 11:1", stored.Scripture)

	w = doJSON(r, http.MethodDelete, "/api/v1/sermons/1", nil, token)
	requireStatus(t, w, http.StatusOK)

	var count int64
	require.NoError(t, db.Model(&models.Sermon{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSermonMutationsRequireAdmin(t *testing.T) {
	db, r := newTestEnv(t, testConfig(t))

	w := doJSON(r, http.MethodPost, "/api/v1/sermons", map[string]interface{}{
		"title": "Unauthorized",
	}, "")
	requireStatus(t, w, http.StatusUnauthorized)

	var count int64
	require.NoError(t, db.Model(&models.Sermon{}).Count(&count).Error)
	require.Zero(t, count, "rejected request must not write")
}

func TestSermonTitleSanitized(t *testing.T) {
	db, r := newTestEnv(t, testConfig(t))

	w := doJSON(r, http.MethodPost, "/api/v1/sermons", map[string]interface{}{
		"title": "<script>alert(1)</script>Grace",
	}, adminToken(t))
	requireStatus(t, w, http.StatusCreated)

	var stored models.Sermon
	require.NoError(t, db.First(&stored).Error)
	require.NotContains(t, stored.Title, "<script>")
	require.Contains(t, stored.Title, "Grace")
}

func TestSermonNotFound(t *testing.T) {
	_, r := newTestEnv(t, testConfig(t))

	w := doJSON(r, http.MethodGet, "/api/v1/sermons/999", nil, "")
	requireStatus(t, w, http.StatusNotFound)

	w = doJSON(r, http.MethodPut, "/api/v1/sermons/999", map[string]interface{}{"speaker": "x"}, adminToken(t))
	requireStatus(t, w, http.StatusNotFound)
}

func TestSermonSeriesFilter(t *testing.T) {
	_, r := newTestEnv(t, testConfig(t))
	token := adminToken(t)

	for _, s := range []map[string]interface{}{
		{"title": "Part 1", "series": "Romans"},
		{"title": "Part 2", "series": "Romans"},
		{"title": "Standalone", "series": "Psalms"},
	} {
		w := doJSON(r, http.MethodPost, "/api/v1/sermons", s, token)
		requireStatus(t, w, http.StatusCreated)
	}

	w := doJSON(r, http.MethodGet, "/api/v1/sermons?series=Romans", nil, "")
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Items []models.Sermon `json:"items"`
	}
	decodeData(t, w, &list)
	require.Len(t, list.Items, 2)
}
