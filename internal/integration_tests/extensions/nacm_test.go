package integration_tests

import (
	"testing"

	"github.com/specialistvlad/yangreactor/internal/testutil"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/specialistvlad/yangreactor/modules/nacm"
	"github.com/stretchr/testify/assert"
)

const netconfACM = `
module "ietf-netconf-acm" {
  namespace = "urn:ietf:params:xml:ns:yang:ietf-netconf-acm"
  prefix    = "nacm"

  extension "default-deny-write" {}
  extension "default-deny-all" {}
}
`

func withNACM(body string) map[string]string {
	return map[string]string{
		"nacm.hcl": netconfACM,
		"sys.hcl": `
module "sys" {
  namespace = "urn:sys"
  prefix    = "sys"

  import "ietf-netconf-acm" {
    prefix = "nacm"
  }
` + body + `
}
`,
	}
}

// Test for: access-control markers are readable from the schema nodes
func TestNACM_DefaultDeny(t *testing.T) {
	result := testutil.RunIntegrationTest(t, withNACM(`
  container "system" {
    ext "nacm:default-deny-write" {}

    leaf "secret" {
      type = "string"
      ext "nacm:default-deny-all" {}
    }
    leaf "hostname" {
      type = "string"
    }
  }
`))

	write, all := nacm.DefaultDeny(testutil.AssertNode(t, result, "/sys:system"))
	assert.True(t, write)
	assert.False(t, all)

	write, all = nacm.DefaultDeny(testutil.AssertNode(t, result, "/sys:system/secret"))
	assert.False(t, write)
	assert.True(t, all)

	write, all = nacm.DefaultDeny(testutil.AssertNode(t, result, "/sys:system/hostname"))
	assert.False(t, write)
	assert.False(t, all)
}

// Test for: access-control markers outside data nodes are rejected
func TestNACM_InvalidPlacement(t *testing.T) {
	result := testutil.RunIntegrationTest(t, withNACM(`
  typedef "password" {
    type = "string"
    ext "nacm:default-deny-all" {}
  }
`))

	errs := testutil.AssertErrorKind(t, result, yangerr.InvalidSubstatement)
	assert.Contains(t, errs[0].Message, "default-deny-all is only allowed on data nodes")
}

// Test for: an extension that no module defines cannot be used
func TestExtensions_UndefinedExtension(t *testing.T) {
	result := testutil.RunIntegrationTest(t, withNACM(`
  container "system" {
    ext "nacm:default-deny-everything" {}
  }
`))

	errs := testutil.AssertErrorKind(t, result, yangerr.Inference)
	assert.Contains(t, errs[0].Message, "extension default-deny-everything is not defined in module ietf-netconf-acm")
}
