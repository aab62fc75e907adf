package provider

import (
	"encoding/json"
	"testing"

	"gotest.tools/assert"
)

func TestCreateFailureResources(t *testing.T) {
	m := Memo{}
	assert.Equal(t, m.CreateFailureResources(), ResourcesClear)

	m.ProvisioningStarted = true
	assert.Equal(t, m.CreateFailureResources(), ResourcesRemaining)
}

func TestMemoEmbeddingPromotesFields(t *testing.T) {
	type clusterMemo struct {
		Memo
		ClusterName string `json:"clusterName,omitempty"`
	}

	m := clusterMemo{ClusterName: "selftest"}
	m.CurrentStatus = "Creating cluster"
	m.ProvisioningStarted = true

	data, err := json.Marshal(m)
	assert.NilError(t, err)
	assert.Check(t, json.Valid(data))

	var back clusterMemo
	assert.NilError(t, json.Unmarshal(data, &back))
	assert.DeepEqual(t, back, m)
	assert.Check(t, back.ProvisioningStarted)
}
