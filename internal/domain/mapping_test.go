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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiMappingPage(mappings ...*apigatewayv2.ApiMapping) []*apigatewayv2.GetApiMappingsOutput {
	return []*apigatewayv2.GetApiMappingsOutput{
		{Items: mappings},
	}
}

func apiMapping(apiID, mappingID, key, stage string) *apigatewayv2.ApiMapping {
	return &apigatewayv2.ApiMapping{
		ApiId:         aws.String(apiID),
		ApiMappingId:  aws.String(mappingID),
		ApiMappingKey: aws.String(key),
		Stage:         aws.String(stage),
	}
}

func TestResolveAPIIDExplicit(t *testing.T) {
	cfSvc := &mockCloudFormationSvc{}

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{CloudFormation: cfSvc})

	apiID, err := m.resolveAPIID(testDomain())
	require.NoError(t, err)

	assert.Equal(t, testAPIID, apiID)
	assert.Equal(t, 0, cfSvc.describeStackResourceCallCount)
}

func TestResolveAPIIDFromStack(t *testing.T) {
	cfSvc := &mockCloudFormationSvc{physicalID: testAPIID}

	m := newTestManager(nil, Settings{StackName: testStackName}, Clients{CloudFormation: cfSvc})

	apiID, err := m.resolveAPIID(testDomain())
	require.NoError(t, err)

	assert.Equal(t, testAPIID, apiID)
	assert.Equal(t, 1, cfSvc.describeStackResourceCallCount)
}

func TestResolveAPIIDStackMissing(t *testing.T) {
	cfSvc := &mockCloudFormationSvc{stackMissing: true}

	m := newTestManager(nil, Settings{StackName: testStackName}, Clients{CloudFormation: cfSvc})

	_, err := m.resolveAPIID(testDomain())
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrStackNotFound)
}

func TestResolveAPIIDEmptyPhysicalID(t *testing.T) {
	cfSvc := &mockCloudFormationSvc{}

	m := newTestManager(nil, Settings{StackName: testStackName}, Clients{CloudFormation: cfSvc})

	_, err := m.resolveAPIID(testDomain())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "no API id found")
}

func TestSetupMappingCreate(t *testing.T) {
	gatewayV2 := &mockGatewayV2Svc{}

	d := testDomain()
	d.BasePath = "v1"

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{GatewayV2: gatewayV2})

	err := m.setupMapping(d)
	require.NoError(t, err)

	assert.Equal(t, 1, gatewayV2.createApiMappingCallCount)
	assert.Equal(t, 0, gatewayV2.updateApiMappingCallCount)

	require.NotNil(t, gatewayV2.lastCreateMapping)
	assert.Equal(t, testAPIID, aws.StringValue(gatewayV2.lastCreateMapping.ApiId))
	assert.Equal(t, "v1", aws.StringValue(gatewayV2.lastCreateMapping.ApiMappingKey))
	assert.Equal(t, "prod", aws.StringValue(gatewayV2.lastCreateMapping.Stage))
}

func TestSetupMappingHTTPStage(t *testing.T) {
	// HTTP API mappings only accept the $default stage
	gatewayV2 := &mockGatewayV2Svc{}

	d := testDomain()
	d.APIType = APITypeHTTP

	m := newTestManager(nil, Settings{HTTPAPIID: "httpapi1"}, Clients{GatewayV2: gatewayV2})

	err := m.setupMapping(d)
	require.NoError(t, err)

	require.NotNil(t, gatewayV2.lastCreateMapping)
	assert.Equal(t, "$default", aws.StringValue(gatewayV2.lastCreateMapping.Stage))
}

func TestSetupMappingAlreadySetUp(t *testing.T) {
	gatewayV2 := &mockGatewayV2Svc{
		mappingPages: apiMappingPage(
			apiMapping(testAPIID, "mapping1", "v1", "prod"),
		),
	}

	d := testDomain()
	d.BasePath = "v1"

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{GatewayV2: gatewayV2})

	err := m.setupMapping(d)
	require.NoError(t, err)

	assert.Equal(t, 0, gatewayV2.createApiMappingCallCount)
	assert.Equal(t, 0, gatewayV2.updateApiMappingCallCount)
}

func TestSetupMappingUpdate(t *testing.T) {
	gatewayV2 := &mockGatewayV2Svc{
		mappingPages: apiMappingPage(
			apiMapping(testAPIID, "mapping1", "old", "prod"),
		),
	}

	d := testDomain()
	d.BasePath = "v1"

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{GatewayV2: gatewayV2})

	err := m.setupMapping(d)
	require.NoError(t, err)

	assert.Equal(t, 0, gatewayV2.createApiMappingCallCount)
	assert.Equal(t, 1, gatewayV2.updateApiMappingCallCount)

	require.NotNil(t, gatewayV2.lastUpdateMapping)
	assert.Equal(t, "mapping1", aws.StringValue(gatewayV2.lastUpdateMapping.ApiMappingId))
	assert.Equal(t, "v1", aws.StringValue(gatewayV2.lastUpdateMapping.ApiMappingKey))
}

func TestSetupMappingPathMatching(t *testing.T) {
	// the path is bound to another API; with path matching enabled the
	// existing mapping is taken over instead of creating a conflicting one
	gatewayV2 := &mockGatewayV2Svc{
		mappingPages: apiMappingPage(
			apiMapping("otherapi", "mapping1", "v1", "prod"),
		),
	}

	d := testDomain()
	d.BasePath = "v1"
	d.AllowPathMatching = true

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{GatewayV2: gatewayV2})

	err := m.setupMapping(d)
	require.NoError(t, err)

	assert.Equal(t, 0, gatewayV2.createApiMappingCallCount)
	assert.Equal(t, 1, gatewayV2.updateApiMappingCallCount)
	assert.Equal(t, testAPIID, aws.StringValue(gatewayV2.lastUpdateMapping.ApiId))
}

func TestRemoveMapping(t *testing.T) {
	gatewayV2 := &mockGatewayV2Svc{
		mappingPages: apiMappingPage(
			apiMapping(testAPIID, "mapping1", "v1", "prod"),
		),
	}

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{GatewayV2: gatewayV2})

	err := m.removeMapping(testDomain())
	require.NoError(t, err)

	assert.Equal(t, 1, gatewayV2.deleteApiMappingCallCount)
	assert.Equal(t, "mapping1", aws.StringValue(gatewayV2.lastDeleteMapping.ApiMappingId))
}

func TestRemoveMappingAbsent(t *testing.T) {
	gatewayV2 := &mockGatewayV2Svc{}

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{GatewayV2: gatewayV2})

	err := m.removeMapping(testDomain())
	require.NoError(t, err)

	assert.Equal(t, 0, gatewayV2.deleteApiMappingCallCount)
}

func TestRemoveMappingStackMissing(t *testing.T) {
	cfSvc := &mockCloudFormationSvc{stackMissing: true}
	gatewayV2 := &mockGatewayV2Svc{}

	m := newTestManager(nil, Settings{StackName: testStackName}, Clients{CloudFormation: cfSvc, GatewayV2: gatewayV2})

	err := m.removeMapping(testDomain())
	require.NoError(t, err)

	assert.Equal(t, 0, gatewayV2.deleteApiMappingCallCount)
}

func TestRemoveMappingDeleteFailureTolerated(t *testing.T) {
	gatewayV2 := &mockGatewayV2Svc{
		mappingPages: apiMappingPage(
			apiMapping(testAPIID, "mapping1", "v1", "prod"),
		),
		deleteMappingErr: notFoundErr(),
	}

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{GatewayV2: gatewayV2})

	err := m.removeMapping(testDomain())
	require.NoError(t, err)

	assert.Equal(t, 1, gatewayV2.deleteApiMappingCallCount)
}

func TestEdgeMappingEmptyBasePath(t *testing.T) {
	gateway := &mockGatewaySvc{
		mappingPages: []*apigateway.GetBasePathMappingsOutput{
			{
				Items: []*apigateway.BasePathMapping{
					{
						BasePath:  aws.String("(none)"),
						RestApiId: aws.String(testAPIID),
						Stage:     aws.String("prod"),
					},
				},
			},
		},
	}

	d := testDomain()
	d.EndpointType = EndpointTypeEdge

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{Gateway: gateway})

	// the existing empty mapping matches the requested empty base path
	err := m.setupMapping(d)
	require.NoError(t, err)

	assert.Equal(t, 0, gateway.createBasePathMappingCallCount)
	assert.Equal(t, 0, gateway.updateBasePathMappingCallCount)

	// deletion has to spell the empty base path the way the API expects
	err = m.removeMapping(d)
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.deleteBasePathMappingCallCount)
	assert.Equal(t, "(none)", aws.StringValue(gateway.lastDeleteMapping.BasePath))
}

func TestEdgeMappingUpdatePatchesBasePath(t *testing.T) {
	gateway := &mockGatewaySvc{
		mappingPages: []*apigateway.GetBasePathMappingsOutput{
			{
				Items: []*apigateway.BasePathMapping{
					{
						BasePath:  aws.String("old"),
						RestApiId: aws.String(testAPIID),
						Stage:     aws.String("prod"),
					},
				},
			},
		},
	}

	d := testDomain()
	d.EndpointType = EndpointTypeEdge
	d.BasePath = "v1"

	m := newTestManager(nil, Settings{RestAPIID: testAPIID}, Clients{Gateway: gateway})

	err := m.setupMapping(d)
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.updateBasePathMappingCallCount)

	input := gateway.lastUpdateMapping
	assert.Equal(t, "old", aws.StringValue(input.BasePath))

	require.Len(t, input.PatchOperations, 1)
	assert.Equal(t, apigateway.OpReplace, aws.StringValue(input.PatchOperations[0].Op))
	assert.Equal(t, "/basePath", aws.StringValue(input.PatchOperations[0].Path))
	assert.Equal(t, "v1", aws.StringValue(input.PatchOperations[0].Value))
}
