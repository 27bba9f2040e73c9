// Copyright © 2021 Banzai Cloud
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"strings"

	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/apigateway"
)

// ErrStackNotFound signals that the CloudFormation stack backing the
// deployment does not exist. During unbind this is an expected condition.
const ErrStackNotFound = errors.Sentinel("cloudformation stack does not exist")

// isAWSNotFound reports whether the error is the provider's answer for a
// resource that does not exist. Absence is a valid state for lookups, not an
// error.
func isAWSNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == apigateway.ErrCodeNotFoundException
	}

	return false
}

// isStackMissing reports whether the error means the CloudFormation stack
// itself is gone. The API reports this as a generic validation error, so the
// message has to be inspected.
func isStackMissing(err error) bool {
	if errors.Is(err, ErrStackNotFound) {
		return true
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == "ValidationError" && strings.Contains(aerr.Message(), "does not exist")
	}

	return false
}

// domainError converts a per-domain failure into the error surfaced to the
// caller. Raw provider detail is only included when debug logging is
// enabled.
func (m *Manager) domainError(err error, action, domainName string) error {
	if m.debug {
		return errors.WrapIff(err, "unable to %s domain %s", action, domainName)
	}

	return errors.Errorf("unable to %s domain %s", action, domainName)
}
