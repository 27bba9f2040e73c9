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

package amazon

import (
	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// maxRetries is deliberately generous: Route53 and API Gateway throttle
// aggressively when many domains are reconciled at once.
const maxRetries = 11

// NewSession creates an AWS session for the given region using the default
// credential chain.
func NewSession(region string) (*session.Session, error) {
	sess, err := session.NewSession(aws.NewConfig().
		WithRegion(region).
		WithMaxRetries(maxRetries))

	return sess, errors.WrapIf(err, "failed to create AWS session")
}

// NewSessionWithCredentials creates an AWS session for the given region with
// static credentials.
func NewSessionWithCredentials(region, accessKeyID, secretAccessKey string) (*session.Session, error) {
	sess, err := session.NewSession(aws.NewConfig().
		WithRegion(region).
		WithCredentials(credentials.NewStaticCredentials(accessKeyID, secretAccessKey, "")).
		WithMaxRetries(maxRetries))

	return sess, errors.WrapIf(err, "failed to create AWS session")
}
