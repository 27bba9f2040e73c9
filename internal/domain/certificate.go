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
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/acm/acmiface"
)

// certificateRegion is where certificates for edge-optimized domains live:
// edge domains are served by CloudFront, which only accepts certificates
// from this region.
const certificateRegion = "us-east-1"

// nolint: gochecknoglobals
var certificateStatuses = []string{
	acm.CertificateStatusPendingValidation,
	acm.CertificateStatusIssued,
	acm.CertificateStatusInactive,
}

// certificateStoreFor returns the ACM client of the certificate store
// implied by the endpoint type.
func (m *Manager) certificateStoreFor(d DomainConfig) (acmiface.ACMAPI, error) {
	switch d.EndpointType {
	case EndpointTypeEdge:
		return m.acmEdgeSvc, nil
	case EndpointTypeRegional:
		return m.acmSvc, nil
	}

	return nil, errors.Errorf("unsupported endpoint type: %q", d.EndpointType)
}

// resolveCertificateARN selects the certificate for the domain. An explicit
// ARN always wins without a remote call. When a certificate name is
// configured only an exact match is accepted. Otherwise the most specific
// certificate wins: the candidate name is matched against the requested
// domain with a leading wildcard stripped, and the longest stripped name
// found first is kept.
func (m *Manager) resolveCertificateARN(d DomainConfig) (string, error) {
	if d.CertificateARN != "" {
		m.logger.Info("using certificate ARN from configuration", map[string]interface{}{
			"domain":         d.GivenDomainName,
			"certificateArn": d.CertificateARN,
		})

		return d.CertificateARN, nil
	}

	svc, err := m.certificateStoreFor(d)
	if err != nil {
		return "", err
	}

	var (
		bestARN string
		bestLen int
	)

	input := &acm.ListCertificatesInput{
		CertificateStatuses: aws.StringSlice(certificateStatuses),
	}

	for {
		out, err := svc.ListCertificates(input)
		if err != nil {
			return "", errors.WrapIff(err, "could not list certificates for domain %q", d.GivenDomainName)
		}

		for _, cert := range out.CertificateSummaryList {
			name := aws.StringValue(cert.DomainName)

			if d.CertificateName != "" {
				if name == d.CertificateName {
					return aws.StringValue(cert.CertificateArn), nil
				}

				continue
			}

			stripped := strings.TrimPrefix(name, "*")
			if len(stripped) > bestLen && strings.Contains(d.GivenDomainName, stripped) {
				bestARN = aws.StringValue(cert.CertificateArn)
				bestLen = len(stripped)
			}
		}

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	if bestARN == "" {
		return "", errors.Errorf("could not find certificate for domain %q", d.GivenDomainName)
	}

	return bestARN, nil
}
