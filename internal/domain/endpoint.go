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
	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/apigateway"
	"github.com/aws/aws-sdk-go/service/apigateway/apigatewayiface"
	"github.com/aws/aws-sdk-go/service/apigatewayv2"
	"github.com/aws/aws-sdk-go/service/apigatewayv2/apigatewayv2iface"
)

// cloudFrontHostedZoneID is the fixed hosted zone of every CloudFront
// distribution. Edge-optimized domains alias into this zone.
const cloudFrontHostedZoneID = "Z2FDTNDATAQYW2"

// emptyBasePath is how the edge-shaped API spells an empty mapping key.
const emptyBasePath = "(none)"

// gatewayEndpoint is the resource shape of a custom domain. The edge and
// regional models are served by different APIs with different request
// shapes; the endpoint is selected once per domain and reused for every
// domain and mapping operation.
type gatewayEndpoint interface {
	getDomain(domainName string) (*DomainInfo, error)
	createDomain(d DomainConfig, certificateARN string) (*DomainInfo, error)
	deleteDomain(domainName string) error
	listMappings(domainName string) ([]APIMapping, error)
	createMapping(d DomainConfig, apiID string) error
	updateMapping(d DomainConfig, apiID string, mapping APIMapping) error
	deleteMapping(domainName string, mapping APIMapping) error
}

func (m *Manager) endpointFor(d DomainConfig) (gatewayEndpoint, error) {
	switch d.EndpointType {
	case EndpointTypeEdge:
		return &edgeEndpoint{svc: m.gatewaySvc}, nil
	case EndpointTypeRegional:
		return &regionalEndpoint{svc: m.gatewayV2Svc}, nil
	}

	return nil, errors.Errorf("unsupported endpoint type: %q", d.EndpointType)
}

// edgeEndpoint drives edge-optimized custom domains through the REST
// (v1) shaped API.
type edgeEndpoint struct {
	svc apigatewayiface.APIGatewayAPI
}

func (e *edgeEndpoint) getDomain(domainName string) (*DomainInfo, error) {
	out, err := e.svc.GetDomainName(&apigateway.GetDomainNameInput{
		DomainName: aws.String(domainName),
	})
	if err != nil {
		if isAWSNotFound(err) {
			return nil, nil
		}

		return nil, errors.WrapIf(err, "failed to get custom domain")
	}

	return newEdgeDomainInfo(out), nil
}

func (e *edgeEndpoint) createDomain(d DomainConfig, certificateARN string) (*DomainInfo, error) {
	out, err := e.svc.CreateDomainName(&apigateway.CreateDomainNameInput{
		DomainName:     aws.String(d.GivenDomainName),
		CertificateArn: aws.String(certificateARN),
		SecurityPolicy: aws.String(string(d.SecurityPolicy)),
		EndpointConfiguration: &apigateway.EndpointConfiguration{
			Types: []*string{aws.String(apigateway.EndpointTypeEdge)},
		},
	})
	if err != nil {
		return nil, errors.WrapIf(err, "failed to create custom domain")
	}

	return newEdgeDomainInfo(out), nil
}

func (e *edgeEndpoint) deleteDomain(domainName string) error {
	_, err := e.svc.DeleteDomainName(&apigateway.DeleteDomainNameInput{
		DomainName: aws.String(domainName),
	})

	return errors.WrapIf(err, "failed to delete custom domain")
}

func (e *edgeEndpoint) listMappings(domainName string) ([]APIMapping, error) {
	var mappings []APIMapping

	input := &apigateway.GetBasePathMappingsInput{DomainName: aws.String(domainName)}

	for {
		out, err := e.svc.GetBasePathMappings(input)
		if err != nil {
			return nil, errors.WrapIf(err, "failed to list base path mappings")
		}

		for _, item := range out.Items {
			basePath := aws.StringValue(item.BasePath)
			if basePath == emptyBasePath {
				basePath = ""
			}

			mappings = append(mappings, APIMapping{
				APIID:    aws.StringValue(item.RestApiId),
				BasePath: basePath,
				Stage:    aws.StringValue(item.Stage),
			})
		}

		if out.Position == nil {
			break
		}
		input.Position = out.Position
	}

	return mappings, nil
}

func (e *edgeEndpoint) createMapping(d DomainConfig, apiID string) error {
	_, err := e.svc.CreateBasePathMapping(&apigateway.CreateBasePathMappingInput{
		DomainName: aws.String(d.GivenDomainName),
		BasePath:   aws.String(d.BasePath),
		RestApiId:  aws.String(apiID),
		Stage:      aws.String(d.mappingStage()),
	})

	return errors.WrapIf(err, "failed to create base path mapping")
}

func (e *edgeEndpoint) updateMapping(d DomainConfig, apiID string, mapping APIMapping) error {
	_, err := e.svc.UpdateBasePathMapping(&apigateway.UpdateBasePathMappingInput{
		DomainName: aws.String(d.GivenDomainName),
		BasePath:   aws.String(edgeBasePath(mapping.BasePath)),
		PatchOperations: []*apigateway.PatchOperation{
			{
				Op:    aws.String(apigateway.OpReplace),
				Path:  aws.String("/basePath"),
				Value: aws.String(d.BasePath),
			},
		},
	})

	return errors.WrapIf(err, "failed to update base path mapping")
}

func (e *edgeEndpoint) deleteMapping(domainName string, mapping APIMapping) error {
	_, err := e.svc.DeleteBasePathMapping(&apigateway.DeleteBasePathMappingInput{
		DomainName: aws.String(domainName),
		BasePath:   aws.String(edgeBasePath(mapping.BasePath)),
	})

	return errors.WrapIf(err, "failed to delete base path mapping")
}

func newEdgeDomainInfo(d *apigateway.DomainName) *DomainInfo {
	return &DomainInfo{
		DomainName: firstNonEmpty(
			aws.StringValue(d.DistributionDomainName),
			aws.StringValue(d.RegionalDomainName),
			aws.StringValue(d.DomainName),
		),
		HostedZoneID: firstNonEmpty(
			aws.StringValue(d.DistributionHostedZoneId),
			aws.StringValue(d.RegionalHostedZoneId),
			cloudFrontHostedZoneID,
		),
	}
}

func edgeBasePath(basePath string) string {
	if basePath == "" {
		return emptyBasePath
	}

	return basePath
}

// regionalEndpoint drives regional custom domains through the v2 shaped API.
type regionalEndpoint struct {
	svc apigatewayv2iface.ApiGatewayV2API
}

func (r *regionalEndpoint) getDomain(domainName string) (*DomainInfo, error) {
	out, err := r.svc.GetDomainName(&apigatewayv2.GetDomainNameInput{
		DomainName: aws.String(domainName),
	})
	if err != nil {
		if isAWSNotFound(err) {
			return nil, nil
		}

		return nil, errors.WrapIf(err, "failed to get custom domain")
	}

	return newRegionalDomainInfo(aws.StringValue(out.DomainName), out.DomainNameConfigurations), nil
}

func (r *regionalEndpoint) createDomain(d DomainConfig, certificateARN string) (*DomainInfo, error) {
	out, err := r.svc.CreateDomainName(&apigatewayv2.CreateDomainNameInput{
		DomainName: aws.String(d.GivenDomainName),
		DomainNameConfigurations: []*apigatewayv2.DomainNameConfiguration{
			{
				CertificateArn: aws.String(certificateARN),
				EndpointType:   aws.String(apigatewayv2.EndpointTypeRegional),
				SecurityPolicy: aws.String(string(d.SecurityPolicy)),
			},
		},
	})
	if err != nil {
		return nil, errors.WrapIf(err, "failed to create custom domain")
	}

	return newRegionalDomainInfo(aws.StringValue(out.DomainName), out.DomainNameConfigurations), nil
}

func (r *regionalEndpoint) deleteDomain(domainName string) error {
	_, err := r.svc.DeleteDomainName(&apigatewayv2.DeleteDomainNameInput{
		DomainName: aws.String(domainName),
	})

	return errors.WrapIf(err, "failed to delete custom domain")
}

func (r *regionalEndpoint) listMappings(domainName string) ([]APIMapping, error) {
	var mappings []APIMapping

	input := &apigatewayv2.GetApiMappingsInput{DomainName: aws.String(domainName)}

	for {
		out, err := r.svc.GetApiMappings(input)
		if err != nil {
			return nil, errors.WrapIf(err, "failed to list API mappings")
		}

		for _, item := range out.Items {
			mappings = append(mappings, APIMapping{
				APIID:     aws.StringValue(item.ApiId),
				MappingID: aws.StringValue(item.ApiMappingId),
				BasePath:  aws.StringValue(item.ApiMappingKey),
				Stage:     aws.StringValue(item.Stage),
			})
		}

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	return mappings, nil
}

func (r *regionalEndpoint) createMapping(d DomainConfig, apiID string) error {
	_, err := r.svc.CreateApiMapping(&apigatewayv2.CreateApiMappingInput{
		DomainName:    aws.String(d.GivenDomainName),
		ApiId:         aws.String(apiID),
		ApiMappingKey: aws.String(d.BasePath),
		Stage:         aws.String(d.mappingStage()),
	})

	return errors.WrapIf(err, "failed to create API mapping")
}

func (r *regionalEndpoint) updateMapping(d DomainConfig, apiID string, mapping APIMapping) error {
	_, err := r.svc.UpdateApiMapping(&apigatewayv2.UpdateApiMappingInput{
		DomainName:    aws.String(d.GivenDomainName),
		ApiId:         aws.String(apiID),
		ApiMappingId:  aws.String(mapping.MappingID),
		ApiMappingKey: aws.String(d.BasePath),
		Stage:         aws.String(d.mappingStage()),
	})

	return errors.WrapIf(err, "failed to update API mapping")
}

func (r *regionalEndpoint) deleteMapping(domainName string, mapping APIMapping) error {
	_, err := r.svc.DeleteApiMapping(&apigatewayv2.DeleteApiMappingInput{
		DomainName:   aws.String(domainName),
		ApiMappingId: aws.String(mapping.MappingID),
	})

	return errors.WrapIf(err, "failed to delete API mapping")
}

func newRegionalDomainInfo(domainName string, configs []*apigatewayv2.DomainNameConfiguration) *DomainInfo {
	info := &DomainInfo{
		DomainName:   domainName,
		HostedZoneID: cloudFrontHostedZoneID,
	}

	if len(configs) > 0 {
		info.DomainName = firstNonEmpty(aws.StringValue(configs[0].ApiGatewayDomainName), domainName)
		info.HostedZoneID = firstNonEmpty(aws.StringValue(configs[0].HostedZoneId), cloudFrontHostedZoneID)
	}

	return info
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
