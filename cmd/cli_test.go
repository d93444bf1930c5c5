package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "version")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(stdout))
}

func TestUnknownCommandIsRejected(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "usage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"usage\"")
}

func TestAccountListShowsConfiguredAccounts(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ghost.one\tproxy=true\ttotp=false")
	assert.Contains(t, stdout, "ghost.two\tproxy=false\ttotp=false")
}

func TestAccountListWithoutAccounts(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No accounts configured in "+filepath.Join(home, ".ghost", "accounts.toml"))
}

func TestAccountListJSONOutput(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "account", "list", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"ID\": \"ghost.one\"")
}

func TestAccountSetRequiresIdentity(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "set", "--password", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"identity\" not set")
}

func TestAccountSetThenListAndRemove(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLIWithInput(t, home, "s3cret\n", "account", "set", "--identity", "@night.owl", "--proxy", "socks5://127.0.0.1:9050")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved account night.owl")

	data, err := os.ReadFile(filepath.Join(home, ".ghost", "accounts.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "night.owl")
	assert.Contains(t, string(data), "secret_ref")
	assert.NotContains(t, string(data), "s3cret")

	stdout, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "night.owl\tproxy=true")

	stdout, _, err = executeCLI(t, home, "account", "remove", "night.owl")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed account night.owl")

	_, _, err = executeCLI(t, home, "account", "remove", "night.owl")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountStatusDoesNotLogIn(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "account", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ghost.one\tnot authenticated\tproxy=true")
	assert.Contains(t, stdout, "ghost.two\tnot authenticated\tproxy=false")
}

func TestAccountLogoutWithoutSession(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "account", "logout", "ghost.one")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dropped session for ghost.one")
}

func TestStatusRendersOverview(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "accounts: 2 (0 authenticated)")
	assert.Contains(t, stdout, "ghost.one")
	assert.Contains(t, stdout, "<- next")
	assert.Contains(t, stdout, "No campaigns yet.")
}

func TestStatusJSONOutput(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	_, _, err := executeCLI(t, home, "campaign", "create", "--name", "launch", "--targets", "alice,bob")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var snapshot struct {
		Pool struct {
			Accounts []struct{ ID string }
		}
		Campaigns []struct {
			Name    string
			Pending int
		}
		Chunks int
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &snapshot))
	assert.Len(t, snapshot.Pool.Accounts, 2)
	require.Len(t, snapshot.Campaigns, 1)
	assert.Equal(t, "launch", snapshot.Campaigns[0].Name)
	assert.Equal(t, 2, snapshot.Campaigns[0].Pending)
	assert.Zero(t, snapshot.Chunks)
}

func TestCampaignCreateStatusResetDelete(t *testing.T) {
	home := t.TempDir()
	targetsFile := filepath.Join(home, "targets.txt")
	require.NoError(t, os.WriteFile(targetsFile, []byte("# outreach\ncarol\n\n@alice\n"), 0o600))

	stdout, _, err := executeCLI(t, home, "campaign", "create", "--name", "launch", "--targets", "alice, bob", "--targets-file", targetsFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(3 targets)")

	id := strings.Fields(stdout)[2]
	require.True(t, strings.HasPrefix(id, "campaign_"), id)

	stdout, _, err = executeCLI(t, home, "campaign", "status", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "launch\t0.0% sent")
	assert.Contains(t, stdout, "0 sent, 0 failed, 3 pending of 3")

	stdout, _, err = executeCLI(t, home, "campaign", "reset", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Reset 0 target(s) in "+id)

	_, _, err = executeCLI(t, home, "campaign", "reset", id, "--status", "lost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status \"lost\"")

	_, _, err = executeCLI(t, home, "campaign", "delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass campaign ids or --all")

	stdout, stderr, err := executeCLI(t, home, "campaign", "delete", id, "campaign_missing")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted "+id)
	assert.Contains(t, stderr, "Not found: campaign_missing")

	_, _, err = executeCLI(t, home, "campaign", "status", id)
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestCampaignCreateRequiresTargets(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "campaign", "create", "--name", "empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one target is required")
}

func TestCampaignRunUnknownCampaign(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	_, _, err := executeCLI(t, home, "campaign", "run", "campaign_missing", "--json")
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestSendWithoutAccountsFails(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "send", "alice", "--json")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAccountsAvailable)
	assert.Contains(t, stdout, "\"success\": false")
}

func TestChunkListAndInfo(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "chunk", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No chunks. 0 raw source(s)")

	chunkDir := filepath.Join(home, ".ghost", "media", "chunks")
	require.NoError(t, os.MkdirAll(chunkDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(chunkDir, "chunk_abcd1234.mp4"), []byte("clip"), 0o600))

	stdout, _, err = executeCLI(t, home, "chunk", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "abcd1234\tunknown")

	stdout, _, err = executeCLI(t, home, "chunk", "info", "abcd1234")
	require.NoError(t, err)
	assert.Contains(t, stdout, "file: chunk_abcd1234.mp4")

	_, _, err = executeCLI(t, home, "chunk", "info", "ffff0000")
	require.ErrorIs(t, err, domain.ErrChunkNotFound)
}

func TestChunkCreateValidatesCount(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "chunk", "create", "--count", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count must be at least 1")
}

func TestAudienceSelectCreatesCampaign(t *testing.T) {
	home := t.TempDir()
	dataset := filepath.Join(home, "users.yaml")
	require.NoError(t, os.WriteFile(dataset, []byte(`users:
  - username: alice
    followers: 1200
  - username: bob
    followers: 90
  - username: carol
    followers: 5000
`), 0o600))

	stdout, stderr, err := executeCLI(t, home, "audience", "select", "--dataset", dataset, "--count", "2", "--min-followers", "1000", "--create-campaign", "picked")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "carol"}, strings.Fields(stdout))
	assert.Contains(t, stderr, "selected 2 of 2 available")
	assert.Contains(t, stderr, "created campaign campaign_")

	_, _, err = executeCLI(t, home, "audience", "select", "--dataset", dataset, "--count", "4")
	require.ErrorIs(t, err, domain.ErrInsufficientAudience)

	stdout, _, err = executeCLI(t, home, "campaign", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "picked")
	assert.Contains(t, stdout, "2 pending of 2")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("GHOST_HOME", filepath.Join(home, ".ghost"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeAccountsFixture(home string) error {
	configDir := filepath.Join(home, ".ghost")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	accounts := `version = 1

[[accounts]]
identity = "ghost.one"
secret = "pw-one"
proxy = "http://127.0.0.1:8080"

[[accounts]]
identity = "ghost.two"
secret = "pw-two"
`

	return os.WriteFile(filepath.Join(configDir, "accounts.toml"), []byte(accounts), 0o600)
}
