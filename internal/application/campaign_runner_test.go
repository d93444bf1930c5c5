package application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(fx *deliveryFixture, cfg RunnerConfig) *CampaignRunner {
	return NewCampaignRunner(fx.campaigns, fx.chunks.library, fx.engine, fx.workflow, fx.pool, cfg, nil, nil)
}

func TestRunCampaignDeliversEveryTarget(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a", "b", "c")
	fx.addChunk(t, "abcd1234")
	id := fx.campaign(t, "alice", "bob")
	runner := newRunner(fx, RunnerConfig{DeliveryWorkers: 4})

	result, err := runner.RunCampaign(context.Background(), RunRequest{CampaignID: id})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Sent)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "100.0%", result.Summary.CompletionRate)
	assert.ElementsMatch(t, []string{"alice", "bob"}, fx.platform.shared)
}

func TestRunCampaignConcurrencyIsBoundedByAccounts(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a", "b")
	fx.addChunk(t, "abcd1234")
	fx.platform.publishDelay = 20 * time.Millisecond
	id := fx.campaign(t, "t1", "t2", "t3", "t4", "t5", "t6")
	runner := newRunner(fx, RunnerConfig{DeliveryWorkers: 1})

	result, err := runner.RunCampaign(context.Background(), RunRequest{CampaignID: id, Workers: 5})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Sent)
	assert.LessOrEqual(t, fx.platform.maxActive, 2)
	assert.Equal(t, 6, result.Summary.Completed)
}

func TestRunCampaignRecordsFailuresAndRetries(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a")
	fx.addChunk(t, "abcd1234")
	id := fx.campaign(t, "alice", "bob")
	_, err := fx.campaigns.UpdateTarget(context.Background(), id, "bob", TargetPatch{Status: domain.TargetError, Error: "earlier"})
	require.NoError(t, err)
	fx.platform.publishErrs = []error{domain.ErrTransient, domain.ErrTransient}
	runner := newRunner(fx, RunnerConfig{})

	result, err := runner.RunCampaign(context.Background(), RunRequest{CampaignID: id})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "alice: ")
	assert.Equal(t, "0.0%", result.Summary.CompletionRate)

	result, err = runner.RunCampaign(context.Background(), RunRequest{CampaignID: id, RetryFailed: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, "100.0%", result.Summary.CompletionRate)
}

func TestRunCampaignWithoutAccounts(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t)
	id := fx.campaign(t, "alice")
	runner := newRunner(fx, RunnerConfig{})

	_, err := runner.RunCampaign(context.Background(), RunRequest{CampaignID: id})
	require.ErrorIs(t, err, domain.ErrNoAccountsAvailable)
}

func TestRunCampaignStopsWhenNoAccountAuthenticates(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a")
	fx.addChunk(t, "abcd1234")
	fx.platform.loginFailures["a"] = domain.ErrAuthFailed
	id := fx.campaign(t, "alice", "bob")
	runner := newRunner(fx, RunnerConfig{DeliveryWorkers: 1})

	result, err := runner.RunCampaign(context.Background(), RunRequest{CampaignID: id})
	require.ErrorIs(t, err, domain.ErrNoAccountsAvailable)

	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, result.Sent)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, 1, result.Summary.Pending)

	campaign, err := fx.campaigns.Campaign(context.Background(), id)
	require.NoError(t, err)
	failed := campaign.TargetsWith(domain.TargetError)
	require.Len(t, failed, 1)
	assert.Contains(t, campaign.Targets[failed[0]].Error, domain.ErrNoAccountsAvailable.Error())
	assert.Empty(t, fx.platform.published)
}

func TestPrepareThenRunCampaign(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "sender1", "sender2")
	fx.addChunk(t, "aaaa1111")
	fx.addChunk(t, "bbbb2222")
	id := fx.campaign(t, "a", "b")
	runner := newRunner(fx, RunnerConfig{DeliveryWorkers: 2, EncodeWorkers: 2})
	ctx := context.Background()

	prepared, err := runner.PrepareCampaignVideos(ctx, PrepareRequest{CampaignID: id})
	require.NoError(t, err)
	assert.Empty(t, prepared.Errors)
	require.Len(t, prepared.Created, 2)

	campaign, err := fx.campaigns.Campaign(ctx, id)
	require.NoError(t, err)
	artifacts := map[string]string{}
	chunkIDs := map[string]struct{}{}
	for _, target := range []string{"a", "b"} {
		record := campaign.Targets[target]
		require.Equal(t, domain.TargetPersonalized, record.Status, target)
		require.FileExists(t, record.ArtifactPath)
		artifacts[target] = record.ArtifactPath
		chunkIDs[record.ChunkID] = struct{}{}
	}
	assert.Len(t, chunkIDs, 2)
	encodes := fx.chunks.encoder.jobCount()

	result, err := runner.RunCampaign(ctx, RunRequest{CampaignID: id})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, "100.0%", result.Summary.CompletionRate)
	assert.Equal(t, encodes, fx.chunks.encoder.jobCount())

	published := map[string]string{}
	for _, req := range fx.platform.published {
		published[req.Tags[0].User.Username] = req.VideoPath
	}
	assert.Equal(t, artifacts, published)

	campaign, err = fx.campaigns.Campaign(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, campaign.TargetsWith(domain.TargetSent))
}

func TestRunCampaignUnknownCampaign(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a")
	runner := newRunner(fx, RunnerConfig{})

	_, err := runner.RunCampaign(context.Background(), RunRequest{CampaignID: "campaign_missing"})
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)

	_, err = runner.PrepareCampaignVideos(context.Background(), PrepareRequest{CampaignID: "campaign_missing"})
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestPrepareCampaignVideosCreatesChunksAndArtifacts(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a")
	writeFile(t, filepath.Join(fx.chunks.cfg.RawDir, "tape.mp4"), "raw")
	fx.chunks.encoder.durations["tape.mp4"] = 60
	id := fx.campaign(t, "alice", "bob", "carol")
	runner := newRunner(fx, RunnerConfig{EncodeWorkers: 2})

	result, err := runner.PrepareCampaignVideos(context.Background(), PrepareRequest{CampaignID: id, EnsureChunks: 2})
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Created, 3)

	chunks, err := fx.chunks.library.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	campaign, err := fx.campaigns.Campaign(context.Background(), id)
	require.NoError(t, err)
	for _, target := range []string{"alice", "bob", "carol"} {
		record := campaign.Targets[target]
		assert.Equal(t, domain.TargetPersonalized, record.Status, target)
		assert.Equal(t, "tape.mp4", record.ChunkSource, target)
		assert.FileExists(t, record.ArtifactPath)
	}

	result, err = runner.PrepareCampaignVideos(context.Background(), PrepareRequest{CampaignID: id})
	require.NoError(t, err)
	assert.Empty(t, result.Created)
}

func TestPrepareCampaignVideosReportsUnknownTargets(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a")
	fx.addChunk(t, "abcd1234")
	id := fx.campaign(t, "alice")
	runner := newRunner(fx, RunnerConfig{})

	result, err := runner.PrepareCampaignVideos(context.Background(), PrepareRequest{CampaignID: id, Targets: []string{"alice", "@mallory"}})
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "alice", result.Created[0].Target)
	assert.Equal(t, "abcd1234", result.Created[0].ChunkID)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "mallory")
}

func TestPrepareCampaignVideosWithoutMedia(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a")
	id := fx.campaign(t, "alice")
	runner := newRunner(fx, RunnerConfig{})

	result, err := runner.PrepareCampaignVideos(context.Background(), PrepareRequest{CampaignID: id, EnsureChunks: 1})
	require.ErrorIs(t, err, domain.ErrNoVideoSources)
	assert.NotEmpty(t, result.Errors)
}

func TestSendOne(t *testing.T) {
	t.Parallel()

	fx := newDeliveryFixture(t, "a", "b")
	fx.addChunk(t, "abcd1234")
	runner := newRunner(fx, RunnerConfig{})

	result, err := runner.SendOne(context.Background(), SendRequest{Target: " @alice ", Account: "b", Message: "hello"})
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)
	assert.Equal(t, domain.AccountID("b"), result.Account)
	assert.Equal(t, "hello", fx.platform.messages["alice"])

	_, err = runner.SendOne(context.Background(), SendRequest{Target: "alice", Account: "zed"})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = runner.SendOne(context.Background(), SendRequest{Target: " "})
	require.ErrorContains(t, err, "target is required")

	_, err = runner.SendOne(context.Background(), SendRequest{Target: "x/../escaped"})
	require.ErrorIs(t, err, domain.ErrInvalidIdentity)

	fx.platform.loginFailures["a"] = domain.ErrAuthFailed
	_, err = runner.SendOne(context.Background(), SendRequest{Target: "alice", Account: "a"})
	require.ErrorIs(t, err, domain.ErrNoAccountsAvailable)
}
