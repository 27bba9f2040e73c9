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
	"github.com/aws/aws-sdk-go/service/cloudformation"
)

// resolveAPIID determines the id of the API to bind under the domain. An
// explicit id from the settings wins without a remote call; otherwise the
// CloudFormation stack is queried for the physical id of the API's logical
// resource.
func (m *Manager) resolveAPIID(d DomainConfig) (string, error) {
	explicit, err := m.explicitAPIID(d.APIType)
	if err != nil {
		return "", err
	}

	if explicit != "" {
		m.logger.Info("using API id from configuration", map[string]interface{}{
			"domain": d.GivenDomainName,
			"apiId":  explicit,
		})

		return explicit, nil
	}

	logicalID, err := d.APIType.logicalResourceID()
	if err != nil {
		return "", err
	}

	out, err := m.cfSvc.DescribeStackResource(&cloudformation.DescribeStackResourceInput{
		StackName:         aws.String(m.settings.StackName),
		LogicalResourceId: aws.String(logicalID),
	})
	if err != nil {
		if isStackMissing(err) {
			return "", errors.WithDetails(ErrStackNotFound, "stackName", m.settings.StackName)
		}

		return "", errors.WrapIff(err, "failed to describe stack resource %q of stack %q", logicalID, m.settings.StackName)
	}

	apiID := ""
	if out.StackResourceDetail != nil {
		apiID = aws.StringValue(out.StackResourceDetail.PhysicalResourceId)
	}

	if apiID == "" {
		return "", errors.Errorf("no API id found for resource %q in stack %q", logicalID, m.settings.StackName)
	}

	return apiID, nil
}

func (m *Manager) explicitAPIID(t APIType) (string, error) {
	switch t {
	case APITypeRest:
		return m.settings.RestAPIID, nil
	case APITypeHTTP:
		return m.settings.HTTPAPIID, nil
	case APITypeWebsocket:
		return m.settings.WebsocketAPIID, nil
	}

	return "", errors.Errorf("unsupported API type: %q", t)
}

// findMapping returns the existing mapping of the domain bound to the given
// API, or nil when there is none. With allowPathMatching enabled a mapping
// is also matched by its base path, so a path can migrate between APIs
// without deleting the old mapping first.
func (m *Manager) findMapping(d DomainConfig, apiID string) (*APIMapping, error) {
	endpoint, err := m.endpointFor(d)
	if err != nil {
		return nil, err
	}

	mappings, err := endpoint.listMappings(d.GivenDomainName)
	if err != nil {
		return nil, err
	}

	for i := range mappings {
		mapping := mappings[i]

		if mapping.APIID == apiID {
			return &mapping, nil
		}

		if d.AllowPathMatching && mapping.BasePath == d.BasePath {
			return &mapping, nil
		}
	}

	return nil, nil
}

// setupMapping creates the base path mapping of the domain, or updates it
// when one for the API already exists with a different path.
func (m *Manager) setupMapping(d DomainConfig) error {
	apiID, err := m.resolveAPIID(d)
	if err != nil {
		return err
	}

	mapping, err := m.findMapping(d, apiID)
	if err != nil {
		return err
	}

	endpoint, err := m.endpointFor(d)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"domain":   d.GivenDomainName,
		"apiId":    apiID,
		"basePath": d.BasePath,
	}

	switch {
	case mapping == nil:
		if err := endpoint.createMapping(d, apiID); err != nil {
			return err
		}

		m.logger.Info("base path mapping created", fields)

	case mapping.APIID == apiID && mapping.BasePath == d.BasePath:
		m.logger.Info("base path mapping is already set up", fields)

	default:
		if err := endpoint.updateMapping(d, apiID, *mapping); err != nil {
			return err
		}

		m.logger.Info("base path mapping updated", fields)
	}

	return nil
}

// removeMapping deletes the base path mapping of the domain. Teardown is
// best effort: a missing stack or a failing deletion produces a warning
// instead of failing the operation, leftover mappings can be cleaned up
// manually.
func (m *Manager) removeMapping(d DomainConfig) error {
	apiID, err := m.resolveAPIID(d)
	if err != nil {
		if errors.Is(err, ErrStackNotFound) {
			m.logger.Warn("CloudFormation stack not found, skipping base path mapping removal", map[string]interface{}{
				"domain":    d.GivenDomainName,
				"stackName": m.settings.StackName,
			})

			return nil
		}

		return err
	}

	mapping, err := m.findMapping(d, apiID)
	if err != nil {
		return err
	}

	if mapping == nil {
		m.logger.Info("no base path mapping to remove", map[string]interface{}{
			"domain": d.GivenDomainName,
			"apiId":  apiID,
		})

		return nil
	}

	endpoint, err := m.endpointFor(d)
	if err != nil {
		return err
	}

	if err := endpoint.deleteMapping(d.GivenDomainName, *mapping); err != nil {
		m.logger.Warn("failed to remove base path mapping, manual cleanup may be needed", map[string]interface{}{
			"domain": d.GivenDomainName,
			"apiId":  mapping.APIID,
			"error":  err.Error(),
		})

		return nil
	}

	m.logger.Info("base path mapping removed", map[string]interface{}{
		"domain": d.GivenDomainName,
		"apiId":  mapping.APIID,
	})

	return nil
}
