package docs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetRoutesRequireBearerAuth(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]struct {
			Security []map[string][]string `json:"security"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	for _, resource := range []string{"organizations", "sites", "measuring-points", "boards", "sensors"} {
		var found bool
		for path, ops := range doc.Paths {
			if !strings.HasPrefix(path, "/api/"+resource) {
				continue
			}
			found = true
			for method, op := range ops {
				require.Len(t, op.Security, 1, "%s %s", method, path)
				assert.Contains(t, op.Security[0], "BearerAuth", "%s %s", method, path)
			}
		}
		assert.True(t, found, resource)
	}

	assert.Empty(t, doc.Paths["/health/live"]["get"].Security)
	assert.Empty(t, doc.Paths["/api/auth/login"]["post"].Security)
}
