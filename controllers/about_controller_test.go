package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gracechapel/churchweb/models"
)

func TestAboutPageCombinesSectionsBeliefsLeadership(t *testing.T) {
	_, r := newTestEnv(t, testConfig(t))
	token := adminToken(t)

	w := doJSON(r, http.MethodPut, "/api/v1/about/sections", map[string]interface{}{
		"section": "Mission",
		"title":   "Our Mission",
		"content": "To know Christ and make Him known.",
	}, token)
	requireStatus(t, w, http.StatusOK)

	w = doJSON(r, http.MethodPost, "/api/v1/about/beliefs", map[string]interface{}{
		"title":     "The Bible",
		"scripture": "2 Timothy 3:16",
		"sortOrder": 1,
	}, token)
	requireStatus(t, w, http.StatusCreated)

	w = doJSON(r, http.MethodPost, "/api/v1/about/leadership", map[string]interface{}{
		"name":      "Rev. Grace Adeyemi",
		"title":     "Senior Pastor",
		"sortOrder": 1,
	}, token)
	requireStatus(t, w, http.StatusCreated)

	w = doJSON(r, http.MethodGet, "/api/v1/about", nil, "")
	requireStatus(t, w, http.StatusOK)

	var data struct {
		Sections   []models.AboutSection     `json:"sections"`
		Beliefs    []models.CoreBelief       `json:"beliefs"`
		Leadership []models.LeadershipMember `json:"leadership"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Sections, 1)
	require.Equal(t, "mission", data.Sections[0].Section)
	require.Len(t, data.Beliefs, 1)
	require.Len(t, data.Leadership, 1)
	require.Equal(t, "Rev. Grace Adeyemi", data.Leadership[0].Name)
}

func TestAboutSectionUpsertReplaces(t *testing.T) {
	db, r := newTestEnv(t, testConfig(t))
	token := adminToken(t)

	var lastID uint
	for _, content := range []string{"first draft", "second draft"} {
		w := doJSON(r, http.MethodPut, "/api/v1/about/sections", map[string]interface{}{
			"section": "History",
			"content": content,
		}, token)
		requireStatus(t, w, http.StatusOK)

		var data struct {
			Section models.AboutSection `json:"section"`
		}
		decodeData(t, w, &data)
		require.NotZero(t, data.Section.ID, "response must carry the stored row")
		if lastID != 0 {
			require.Equal(t, lastID, data.Section.ID)
		}
		lastID = data.Section.ID
	}

	var sections []models.AboutSection
	require.NoError(t, db.Find(&sections).Error)
	require.Len(t, sections, 1, "upsert must not duplicate the section")
	require.Equal(t, "second draft", sections[0].Content)

	w := doJSON(r, http.MethodDelete, "/api/v1/about/sections/history", nil, token)
	requireStatus(t, w, http.StatusOK)
	require.NoError(t, db.Find(&sections).Error)
	require.Empty(t, sections)
}

func TestBeliefPartialUpdate(t *testing.T) {
	db, r := newTestEnv(t, testConfig(t))
	token := adminToken(t)

	w := doJSON(r, http.MethodPost, "/api/v1/about/beliefs", map[string]interface{}{
		"title":     "Salvation",
		"scripture": "Ephesians 2:8",
	}, token)
	requireStatus(t, w, http.StatusCreated)

	w = doJSON(r, http.MethodPut, "/api/v1/about/beliefs/1", map[string]interface{}{
		"sortOrder": 5,
	}, token)
	requireStatus(t, w, http.StatusOK)

	var belief models.CoreBelief
	require.NoError(t, db.First(&belief, 1).Error)
	require.Equal(t, 5, belief.SortOrder)
	require.Equal(t, "Salvation", belief.Title)
	require.Equal(t, "Ephesians 2:8", belief.Scripture)
}
