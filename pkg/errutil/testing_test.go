// SPDX-License-Identifier: Apache-2.0

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/schemagate/migrator/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code(errutil.CodeConfigInvalid).Errorf("test error")
	errutil.AssertErrorCode(t, err, errutil.CodeConfigInvalid)
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("version", uint64(42)).Errorf("test error")
	errutil.AssertErrorContext(t, err, "version", uint64(42))
}
