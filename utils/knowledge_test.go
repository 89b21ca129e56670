package utils

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/models"
)

func TestFallbackAnswerKeywords(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"What time is your Sunday service?", "worship service"},
		{"where are you located", "Contact page"},
		{"how can I donate online", "Giving page"},
		{"any upcoming programs?", "Events page"},
		{"I want to listen to a sermon", "Sermons page"},
		{"who is the pastor", "leadership team"},
		{"first time visitor, what should I expect", "visit"},
	}
	for _, c := range cases {
		assert.Contains(t, FallbackAnswer(c.message), c.want, "message: %s", c.message)
	}

	// No keyword match falls through to the generic answer
	assert.Equal(t, fallbackDefault, FallbackAnswer("asdf qwerty"))
}

func TestBuildKnowledgeBaseIncludesContent(t *testing.T) {
	config.SetForTesting(testConfig(t))
	InvalidateKnowledgeBase()

	db, err := gorm.Open(sqlite.Open("file:knowledge?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Sermon{}, &models.Event{}, &models.Organization{},
		&models.AboutSection{}, &models.LeadershipMember{}, &models.SiteSetting{},
	))

	require.NoError(t, db.Create(&models.Sermon{Title: "Living Water", Speaker: "Pastor John", Date: "2026-08-02"}).Error)
	require.NoError(t, db.Create(&models.Event{Title: "Night of Worship", Date: "2026-09-05", Time: "19:00", Venue: "Main Hall"}).Error)
	require.NoError(t, db.Create(&models.Organization{Name: "Zion Choir", Leader: "Sister Ruth"}).Error)
	require.NoError(t, db.Create(&models.SiteSetting{Key: "address", Value: "12 Chapel Road"}).Error)

	kb := BuildKnowledgeBase(db)
	assert.Contains(t, kb, "Living Water")
	assert.Contains(t, kb, "Night of Worship")
	assert.Contains(t, kb, "Zion Choir")
	assert.Contains(t, kb, "led by Sister Ruth")
	assert.Contains(t, kb, "address: 12 Chapel Road")

	// Second call is served from the process-local copy
	require.NoError(t, db.Create(&models.Sermon{Title: "Not Yet Visible", Date: "2026-08-03"}).Error)
	assert.NotContains(t, BuildKnowledgeBase(db), "Not Yet Visible")

	// Until a mutation invalidates it
	InvalidateKnowledgeBase()
	assert.Contains(t, BuildKnowledgeBase(db), "Not Yet Visible")
}

func TestFlattenSettingValue(t *testing.T) {
	assert.Equal(t, "plain text", flattenSettingValue("plain text"))
	assert.Contains(t, flattenSettingValue(`{"sunday":"9:00"}`), "sunday=9:00")
}
