package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welcome-packet-service/internal/common/database"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return NewStore(client, ttl), mr
}

func TestCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "btxadmin", "BTX Sales Ops", "salesops@btxglobal.example")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "btxadmin", got.Username)
	assert.Equal(t, "BTX Sales Ops", got.Name)
	assert.Equal(t, "salesops@btxglobal.example", got.Email)
	assert.Empty(t, got.APIKey)
}

func TestGet_UnknownID(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	got, err := store.Get(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSave_PersistsAPIKeyAndSlidesExpiry(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "btxadmin", "BTX Sales Ops", "")
	require.NoError(t, err)

	firstExpiry := sess.ExpiresAt

	time.Sleep(10 * time.Millisecond)
	sess.APIKey = "pat-na1-secret"
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pat-na1-secret", got.APIKey)
	assert.True(t, got.ExpiresAt.After(firstExpiry))
}

func TestGet_ExpiredSessionIsDeleted(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, "btxadmin", "", "")
	require.NoError(t, err)

	// Redis key still alive but the embedded expiry has passed.
	mr.FastForward(30 * time.Second)
	raw, err := mr.Get(sessionKeyPrefix + sess.ID)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	sess.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, mrSet(mr, sessionKeyPrefix+sess.ID, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.False(t, mr.Exists(sessionKeyPrefix+sess.ID))
}

func TestDelete_RemovesSessionAndTemplate(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "btxadmin", "", "")
	require.NoError(t, err)
	require.NoError(t, store.SetTemplate(ctx, sess.ID, []byte("%PDF-1.7")))

	require.NoError(t, store.Delete(ctx, sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	tpl, err := store.Template(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, tpl)
	assert.False(t, mr.Exists(templateKeyPrefix+sess.ID))
}

func TestTemplateLifecycle(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "btxadmin", "", "")
	require.NoError(t, err)

	tpl, err := store.Template(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, tpl, "no template before upload")

	require.NoError(t, store.SetTemplate(ctx, sess.ID, []byte("%PDF-1.7 custom")))

	tpl, err = store.Template(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 custom"), tpl)

	require.NoError(t, store.ClearTemplate(ctx, sess.ID))

	tpl, err = store.Template(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, tpl, "cleared template falls back to default")
}

func TestTemplate_TTLFollowsSession(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, "btxadmin", "", "")
	require.NoError(t, err)
	require.NoError(t, store.SetTemplate(ctx, sess.ID, []byte("%PDF-1.7")))

	mr.FastForward(2 * time.Minute)

	tpl, err := store.Template(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, tpl, "template expires with the session")
}

func mrSet(mr *miniredis.Miniredis, key string, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return mr.Set(key, string(raw))
}
