package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]any
	assert.ErrorIs(t, repo.Get(ctx, "planner:plans:stu-1:x", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "planner:plans:stu-1:x", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "planner:plans:stu-1:*"))
	assert.NoError(t, repo.Close())
}
