package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity/identityinfra"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSync(policy SyncPolicy) (*UserSync, *userinfra.MemoryUserRepository, *stubIdentity, *recordingAudit) {
	repo := userinfra.NewMemoryUserRepository()
	idp := newStubIdentity(jane())
	audit := &recordingAudit{}
	return NewUserSync(repo, idp, policy, audit, metricsx.Nop{}, logx.NewNop()), repo, idp, audit
}

func TestUserSync_LazyCreatesOnce(t *testing.T) {
	s, repo, idp, audit := newSync(SyncLazy)
	ctx := context.Background()
	a := &kernel.Assertion{SubjectID: "user_jane"}

	first, err := s.Resolve(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", first.Name)
	require.NotNil(t, first.Email)
	assert.Equal(t, "jane@example.com", *first.Email)
	assert.Equal(t, user.RoleUser, first.Role)

	// Provider changes are not picked up under the lazy policy.
	p := jane()
	p.FirstName = "Janet"
	idp.set(p)

	second, err := s.Resolve(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jane Doe", second.Name)

	assert.Equal(t, 1, repo.Count())
	assert.EqualValues(t, 1, idp.calls.Load())
	assert.Equal(t, []string{"user_synced"}, audit.Events())
}

func TestUserSync_AlwaysRefreshes(t *testing.T) {
	s, repo, idp, _ := newSync(SyncAlways)
	ctx := context.Background()
	a := &kernel.Assertion{SubjectID: "user_jane"}

	first, err := s.Resolve(ctx, a)
	require.NoError(t, err)

	p := jane()
	p.FirstName = "Janet"
	idp.set(p)

	second, err := s.Resolve(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Janet Doe", second.Name)
	assert.Equal(t, 1, repo.Count())
	assert.EqualValues(t, 2, idp.calls.Load())
}

func TestUserSync_AlwaysReadsPastProfileCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	idp := newStubIdentity(jane())
	cached := identityinfra.NewCachedClient(idp, rdb, time.Hour, logx.NewNop())
	repo := userinfra.NewMemoryUserRepository()
	s := NewUserSync(repo, cached, SyncAlways, &recordingAudit{}, metricsx.Nop{}, logx.NewNop())
	ctx := context.Background()
	a := &kernel.Assertion{SubjectID: "user_jane"}

	_, err := s.Resolve(ctx, a)
	require.NoError(t, err)

	p := jane()
	p.FirstName = "Janet"
	idp.set(p)

	second, err := s.Resolve(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Janet Doe", second.Name)
	assert.EqualValues(t, 2, idp.calls.Load())
}

func TestUserSync_ConcurrentFirstRequests(t *testing.T) {
	for _, policy := range []SyncPolicy{SyncLazy, SyncAlways} {
		t.Run(string(policy), func(t *testing.T) {
			s, repo, _, _ := newSync(policy)
			a := &kernel.Assertion{SubjectID: "user_jane"}

			const n = 16
			ids := make([]kernel.UserID, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					u, err := s.Resolve(context.Background(), a)
					if assert.NoError(t, err) {
						ids[i] = u.ID
					}
				}(i)
			}
			wg.Wait()

			assert.Equal(t, 1, repo.Count())
			for _, id := range ids {
				assert.Equal(t, ids[0], id)
			}
		})
	}
}

func TestUserSync_Rejections(t *testing.T) {
	t.Run("empty subject", func(t *testing.T) {
		s, repo, idp, _ := newSync(SyncLazy)
		_, err := s.Resolve(context.Background(), &kernel.Assertion{})
		assert.True(t, errx.HasCode(err, errx.CodeUnauthorized))
		assert.Zero(t, repo.Writes())
		assert.Zero(t, idp.calls.Load())
	})

	t.Run("unverified primary email", func(t *testing.T) {
		s, repo, idp, _ := newSync(SyncLazy)
		p := jane()
		p.ID = "user_unverified"
		p.EmailAddresses[0].Verified = false
		idp.set(p)

		_, err := s.Resolve(context.Background(), &kernel.Assertion{SubjectID: "user_unverified"})
		assert.True(t, errx.HasCode(err, errx.CodeForbidden))
		assert.Zero(t, repo.Writes())
	})

	t.Run("unknown to provider", func(t *testing.T) {
		s, repo, _, _ := newSync(SyncLazy)
		_, err := s.Resolve(context.Background(), &kernel.Assertion{SubjectID: "user_ghost"})

		var pf *errx.ProviderFailure
		require.ErrorAs(t, err, &pf)
		assert.Equal(t, errx.ProviderNotFound, pf.Kind)
		assert.Zero(t, repo.Writes())
	})
}

func TestNewUserSync_UnknownPolicyIsLazy(t *testing.T) {
	s := NewUserSync(userinfra.NewMemoryUserRepository(), newStubIdentity(), "sometimes", &recordingAudit{}, nil, logx.NewNop())
	assert.Equal(t, SyncLazy, s.Policy())
}
