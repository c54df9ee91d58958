// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proposals_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/api/proposals"
	"github.com/vechain/moot/coord"
	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/moot"
)

type env struct {
	ts    *httptest.Server
	track *coord.Tracker
	a     *coord.Author
	b     *coord.Author
}

func newEnv(t *testing.T) *env {
	t.Helper()
	newAuthor := func(address string) *coord.Author {
		pk, err := cry.GenerateKey()
		require.NoError(t, err)
		author, err := coord.NewAuthor(pk, moot.PaymentAddress(address))
		require.NoError(t, err)
		return author
	}

	coordinator := newAuthor("g.agents.coordinator")
	track := coord.NewTracker(coordinator, coord.NewEscrow(), nil)

	router := mux.NewRouter()
	proposals.New(track).Mount(router, "/proposals")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &env{
		ts:    ts,
		track: track,
		a:     newAuthor("g.agents.a"),
		b:     newAuthor("g.agents.b"),
	}
}

func (e *env) get(t *testing.T, path string, status int) []byte {
	t.Helper()
	res, err := http.Get(e.ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, status, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body
}

func (e *env) post(t *testing.T, path string, payload any, status int) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	res, err := http.Post(e.ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, status, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body
}

func (e *env) create(t *testing.T, draft *proposals.Draft) *proposals.Status {
	t.Helper()
	var status proposals.Status
	require.NoError(t, json.Unmarshal(e.post(t, "/proposals", draft, http.StatusCreated), &status))
	return &status
}

func TestCreateAndGetProposal(t *testing.T) {
	env := newEnv(t)

	created := env.create(t, &proposals.Draft{
		Type:         coord.TypeThreshold,
		Participants: []moot.PubKey{env.a.PubKey(), env.b.PubKey()},
		Threshold:    2,
		ExpiresIn:    3600,
		Description:  "rotate relay keys",
	})
	assert.Equal(t, coord.OutcomePending, created.Outcome)
	assert.Equal(t, "rotate relay keys", created.Proposal.Description)
	assert.Len(t, created.Proposal.Participants, 2)

	var fetched proposals.Status
	body := env.get(t, "/proposals/"+created.Proposal.ID, http.StatusOK)
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created.Proposal.ID, fetched.Proposal.ID)
	assert.Equal(t, created.Proposal.RecordID, fetched.Proposal.RecordID)

	var listed []*proposals.Status
	require.NoError(t, json.Unmarshal(env.get(t, "/proposals", http.StatusOK), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.Proposal.ID, listed[0].Proposal.ID)
}

func TestCreateProposalRejectsBadDraft(t *testing.T) {
	env := newEnv(t)

	// unknown type
	env.post(t, "/proposals", &proposals.Draft{
		Type:         "plurality",
		Participants: []moot.PubKey{env.a.PubKey()},
		ExpiresIn:    3600,
	}, http.StatusBadRequest)

	// no participants
	env.post(t, "/proposals", &proposals.Draft{
		Type:      coord.TypeMajority,
		ExpiresIn: 3600,
	}, http.StatusBadRequest)

	// malformed stake
	env.post(t, "/proposals", &proposals.Draft{
		Type:          coord.TypeMajority,
		Participants:  []moot.PubKey{env.a.PubKey()},
		ExpiresIn:     3600,
		StakeRequired: "a few sats",
	}, http.StatusBadRequest)
}

func TestUnknownProposal(t *testing.T) {
	env := newEnv(t)

	env.get(t, "/proposals/deadbeef", http.StatusNotFound)
	env.get(t, "/proposals/deadbeef/votes", http.StatusNotFound)
	env.get(t, "/proposals/deadbeef/result", http.StatusNotFound)
}

func TestVotesAndResult(t *testing.T) {
	env := newEnv(t)

	created := env.create(t, &proposals.Draft{
		Type:         coord.TypeThreshold,
		Participants: []moot.PubKey{env.a.PubKey(), env.b.PubKey()},
		Threshold:    1,
		ExpiresIn:    3600,
		Description:  "adopt the shared prompt",
	})
	id := created.Proposal.ID

	// unsettled: no result yet
	env.get(t, "/proposals/"+id+"/result", http.StatusNotFound)

	status, ok := env.track.Status(id)
	require.True(t, ok)
	rec, _, err := env.a.BuildVote(status.Proposal, coord.VoteApprove, "fine by me", nil)
	require.NoError(t, err)
	_, err = env.track.ObserveVote(rec)
	require.NoError(t, err)

	var votes []*proposals.Vote
	require.NoError(t, json.Unmarshal(env.get(t, "/proposals/"+id+"/votes", http.StatusOK), &votes))
	require.Len(t, votes, 1)
	assert.Equal(t, env.a.PubKey(), votes[0].Voter)
	assert.Equal(t, coord.VoteApprove, votes[0].Value)
	assert.Equal(t, "fine by me", votes[0].Reason)

	var result proposals.Result
	require.NoError(t, json.Unmarshal(env.get(t, "/proposals/"+id+"/result", http.StatusOK), &result))
	assert.Equal(t, coord.OutcomeApproved, result.Outcome)
	assert.Equal(t, 1, result.Voted)
	assert.Equal(t, 2, result.Total)
}

func TestDepositStake(t *testing.T) {
	env := newEnv(t)

	created := env.create(t, &proposals.Draft{
		Type:          coord.TypeConsensus,
		Participants:  []moot.PubKey{env.a.PubKey(), env.b.PubKey()},
		ExpiresIn:     3600,
		StakeRequired: "5000",
		Description:   "settle the compute bill",
	})
	id := created.Proposal.ID
	assert.Equal(t, "5000", created.Proposal.StakeRequired)
	assert.NotEmpty(t, created.Proposal.EscrowAddress)

	env.post(t, "/proposals/"+id+"/stakes", &proposals.StakeDeposit{
		Staker: env.a.PubKey(),
		Amount: "5000",
	}, http.StatusNoContent)

	// outsiders cannot stake
	outsider, err := cry.GenerateKey()
	require.NoError(t, err)
	env.post(t, "/proposals/"+id+"/stakes", &proposals.StakeDeposit{
		Staker: cry.PubKeyOf(outsider),
		Amount: "5000",
	}, http.StatusBadRequest)

	// malformed amount
	env.post(t, "/proposals/"+id+"/stakes", &proposals.StakeDeposit{
		Staker: env.b.PubKey(),
		Amount: "lots",
	}, http.StatusBadRequest)
}
