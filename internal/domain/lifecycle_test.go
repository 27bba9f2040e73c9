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
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/apigateway"
	"github.com/aws/aws-sdk-go/service/apigatewayv2"
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingRegionalDomain() map[string]*apigatewayv2.GetDomainNameOutput {
	return map[string]*apigatewayv2.GetDomainNameOutput{
		testDomainName: {
			DomainName: aws.String(testDomainName),
			DomainNameConfigurations: []*apigatewayv2.DomainNameConfiguration{
				{
					ApiGatewayDomainName: aws.String(testTargetDomain),
					HostedZoneId:         aws.String(testTargetZoneID),
				},
			},
		},
	}
}

func TestCreateDomain(t *testing.T) {
	route53Svc := &mockRoute53Svc{}
	gatewayV2 := &mockGatewayV2Svc{}

	m := newTestManager(nil, Settings{}, Clients{Route53: route53Svc, GatewayV2: gatewayV2})

	err := m.createDomain(testDomain())
	require.NoError(t, err)

	assert.Equal(t, 1, gatewayV2.createDomainNameCallCount)

	require.Len(t, route53Svc.changeInputs, 1)

	changes := route53Svc.changeInputs[0].ChangeBatch.Changes
	require.Len(t, changes, 2)
	assert.Equal(t, route53.ChangeActionUpsert, aws.StringValue(changes[0].Action))
	assert.Equal(t, testTargetDomain, aws.StringValue(changes[0].ResourceRecordSet.AliasTarget.DNSName))
}

func TestCreateDomainAlreadyExists(t *testing.T) {
	route53Svc := &mockRoute53Svc{}
	gatewayV2 := &mockGatewayV2Svc{domains: existingRegionalDomain()}

	m := newTestManager(nil, Settings{}, Clients{Route53: route53Svc, GatewayV2: gatewayV2})

	err := m.createDomain(testDomain())
	require.NoError(t, err)

	// second run against existing state must not touch anything
	assert.Equal(t, 0, gatewayV2.createDomainNameCallCount)
	assert.Empty(t, route53Svc.changeInputs)
}

func TestCreateDomainEdge(t *testing.T) {
	route53Svc := &mockRoute53Svc{}
	gateway := &mockGatewaySvc{}

	d := testDomain()
	d.EndpointType = EndpointTypeEdge

	m := newTestManager(nil, Settings{}, Clients{Route53: route53Svc, Gateway: gateway})

	err := m.createDomain(d)
	require.NoError(t, err)

	require.NotNil(t, gateway.lastCreateDomain)
	assert.Equal(t, testCertificateARN, aws.StringValue(gateway.lastCreateDomain.CertificateArn))
	assert.Equal(t, string(SecurityPolicyTLS12), aws.StringValue(gateway.lastCreateDomain.SecurityPolicy))

	require.NotNil(t, gateway.lastCreateDomain.EndpointConfiguration)
	require.Len(t, gateway.lastCreateDomain.EndpointConfiguration.Types, 1)
	assert.Equal(t, apigateway.EndpointTypeEdge, aws.StringValue(gateway.lastCreateDomain.EndpointConfiguration.Types[0]))

	// edge domains alias into the CloudFront zone
	require.Len(t, route53Svc.changeInputs, 1)
	record := route53Svc.changeInputs[0].ChangeBatch.Changes[0].ResourceRecordSet
	assert.Equal(t, cloudFrontHostedZoneID, aws.StringValue(record.AliasTarget.HostedZoneId))
}

func TestDeleteDomain(t *testing.T) {
	route53Svc := &mockRoute53Svc{}
	gatewayV2 := &mockGatewayV2Svc{domains: existingRegionalDomain()}

	m := newTestManager(nil, Settings{}, Clients{Route53: route53Svc, GatewayV2: gatewayV2})

	err := m.deleteDomain(testDomain())
	require.NoError(t, err)

	assert.Equal(t, 1, gatewayV2.deleteDomainNameCallCount)

	require.Len(t, route53Svc.changeInputs, 1)

	changes := route53Svc.changeInputs[0].ChangeBatch.Changes
	require.Len(t, changes, 2)
	assert.Equal(t, route53.ChangeActionDelete, aws.StringValue(changes[0].Action))
	assert.Equal(t, testTargetDomain, aws.StringValue(changes[0].ResourceRecordSet.AliasTarget.DNSName))
}

func TestDeleteDomainAbsent(t *testing.T) {
	route53Svc := &mockRoute53Svc{}
	gatewayV2 := &mockGatewayV2Svc{}

	m := newTestManager(nil, Settings{}, Clients{Route53: route53Svc, GatewayV2: gatewayV2})

	err := m.deleteDomain(testDomain())
	require.NoError(t, err)

	assert.Equal(t, 0, gatewayV2.deleteDomainNameCallCount)
	assert.Empty(t, route53Svc.changeInputs)
}

func TestFetchDomainInfoAbsent(t *testing.T) {
	m := newTestManager(nil, Settings{}, Clients{GatewayV2: &mockGatewayV2Svc{}})

	info, err := m.fetchDomainInfo(testDomain())
	require.NoError(t, err)

	assert.Nil(t, info)
}
