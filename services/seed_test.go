package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jusfiscal/models"
)

func TestSeedDefaultsOnlySeedsEmptyTables(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SeedDefaults(db, testLogger()))

	var templates, topics int64
	db.Model(&models.ContentTemplate{}).Count(&templates)
	db.Model(&models.ContentTopic{}).Count(&topics)
	assert.Equal(t, int64(len(defaultTemplates)), templates)
	assert.Equal(t, int64(len(defaultTopics)), topics)

	// A second run leaves the edited data alone.
	require.NoError(t, db.Where("content_type = ?", "post").Delete(&models.ContentTemplate{}).Error)
	require.NoError(t, SeedDefaults(db, testLogger()))

	var after int64
	db.Model(&models.ContentTemplate{}).Count(&after)
	assert.Equal(t, templates-1, after)
}

func TestSeedDefaultsCoverOutreachTemplates(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SeedDefaults(db, testLogger()))

	for _, contentType := range []string{"email", "email_follow_up", "article", "post"} {
		var template models.ContentTemplate
		assert.NoError(t, db.Where("content_type = ?", contentType).First(&template).Error,
			"missing template for %s", contentType)
	}
}
