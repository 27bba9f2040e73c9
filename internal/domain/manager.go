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

// Package domain reconciles API Gateway custom domains with their requested
// configuration: it provisions the custom domain resource with a certificate
// attached, binds APIs to base paths under it and publishes Route53 alias
// records pointing at the gateway distribution endpoint.
package domain

import (
	"io"
	"os"
	"sync"

	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/acm/acmiface"
	"github.com/aws/aws-sdk-go/service/apigateway"
	"github.com/aws/aws-sdk-go/service/apigateway/apigatewayiface"
	"github.com/aws/aws-sdk-go/service/apigatewayv2"
	"github.com/aws/aws-sdk-go/service/apigatewayv2/apigatewayv2iface"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/aws/aws-sdk-go/service/route53/route53iface"

	"github.com/banzaicloud/gateway-domain-manager/internal/common"
)

// OutputRegistry is where resolved domain details are reported for the rest
// of the deployment to consume.
type OutputRegistry interface {
	// Set records a single output value under the given key.
	Set(key, value string)
}

// Settings holds the deployment level (not per-domain) configuration of the
// manager.
type Settings struct {
	// StackName is the CloudFormation stack the deployed APIs live in.
	StackName string

	// Explicit API ids, one per API type. When set, the id is used as is
	// and the stack is not queried.
	RestAPIID      string
	HTTPAPIID      string
	WebsocketAPIID string

	// Debug includes raw provider error detail in surfaced errors.
	Debug bool
}

// Clients bundles the provider clients the manager drives.
type Clients struct {
	ACM            acmiface.ACMAPI
	ACMEdge        acmiface.ACMAPI
	Route53        route53iface.Route53API
	Gateway        apigatewayiface.APIGatewayAPI
	GatewayV2      apigatewayv2iface.ApiGatewayV2API
	CloudFormation cloudformationiface.CloudFormationAPI
}

// NewClients builds provider clients on the given session. The edge
// certificate store client is pinned to the CloudFront certificate region
// regardless of the session's own region.
func NewClients(sess *session.Session) Clients {
	return Clients{
		ACM:            acm.New(sess),
		ACMEdge:        acm.New(sess, aws.NewConfig().WithRegion(certificateRegion)),
		Route53:        route53.New(sess),
		Gateway:        apigateway.New(sess),
		GatewayV2:      apigatewayv2.New(sess),
		CloudFormation: cloudformation.New(sess),
	}
}

// Manager reconciles the configured custom domains against the remote state.
type Manager struct {
	domains  []DomainConfig
	settings Settings

	acmSvc       acmiface.ACMAPI
	acmEdgeSvc   acmiface.ACMAPI
	route53Svc   route53iface.Route53API
	gatewaySvc   apigatewayiface.APIGatewayAPI
	gatewayV2Svc apigatewayv2iface.ApiGatewayV2API
	cfSvc        cloudformationiface.CloudFormationAPI

	outputs OutputRegistry
	out     io.Writer
	logger  common.Logger
	debug   bool
}

// NewManager returns a new Manager instance.
func NewManager(
	domains []DomainConfig,
	settings Settings,
	clients Clients,
	outputs OutputRegistry,
	logger common.Logger,
) *Manager {
	return &Manager{
		domains:      domains,
		settings:     settings,
		acmSvc:       clients.ACM,
		acmEdgeSvc:   clients.ACMEdge,
		route53Svc:   clients.Route53,
		gatewaySvc:   clients.Gateway,
		gatewayV2Svc: clients.GatewayV2,
		cfSvc:        clients.CloudFormation,
		outputs:      outputs,
		out:          os.Stdout,
		logger:       logger,
		debug:        settings.Debug,
	}
}

func (m *Manager) enabledDomains() []DomainConfig {
	domains := make([]DomainConfig, 0, len(m.domains))

	for _, d := range m.domains {
		if d.enabled() {
			domains = append(domains, d)
		}
	}

	return domains
}

// processDomains validates the configuration, then runs fn for every enabled
// domain concurrently. A domain's failure does not cancel its siblings; all
// outcomes are collected and surfaced as one combined error after every
// domain has finished.
func (m *Manager) processDomains(action string, fn func(index int, d DomainConfig) error) error {
	if err := m.validateDomains(); err != nil {
		return err
	}

	domains := m.enabledDomains()
	if len(domains) == 0 {
		m.logger.Warn("no enabled custom domains in the configuration")

		return nil
	}

	errs := make([]error, len(domains))

	var wg sync.WaitGroup

	for i, d := range domains {
		wg.Add(1)

		go func(i int, d DomainConfig) {
			defer wg.Done()

			if err := fn(i, d); err != nil {
				m.logger.Error(err.Error(), map[string]interface{}{"domain": d.GivenDomainName})

				errs[i] = m.domainError(err, action, d.GivenDomainName)
			}
		}(i, d)
	}

	wg.Wait()

	return errors.Combine(errs...)
}

// CreateDomains creates the custom domains that do not exist yet and
// publishes their alias records. Domains that already exist are skipped.
func (m *Manager) CreateDomains() error {
	return m.processDomains("create", func(_ int, d DomainConfig) error {
		return m.createDomain(d)
	})
}

// DeleteDomains deletes the custom domains that exist along with their alias
// records. Domains that do not exist are skipped.
func (m *Manager) DeleteDomains() error {
	return m.processDomains("delete", func(_ int, d DomainConfig) error {
		return m.deleteDomain(d)
	})
}

// SetupBasePathMappings binds the deployed APIs to their base paths under
// the custom domains, then prints a summary of the domains.
func (m *Manager) SetupBasePathMappings() error {
	err := m.processDomains("set up base path mapping for", func(_ int, d DomainConfig) error {
		return m.setupMapping(d)
	})
	if err != nil {
		return err
	}

	return m.DomainSummaries()
}

// RemoveBasePathMappings removes the API bindings from the custom domains.
// A missing CloudFormation stack and mapping deletion failures are expected
// during teardown and only produce warnings.
func (m *Manager) RemoveBasePathMappings() error {
	return m.processDomains("remove base path mapping for", func(_ int, d DomainConfig) error {
		return m.removeMapping(d)
	})
}

// UpdateOutputs refreshes the domains' remote state and reports it to the
// output registry.
func (m *Manager) UpdateOutputs() error {
	return m.processDomains("update outputs for", func(_ int, d DomainConfig) error {
		info, err := m.fetchDomainInfo(d)
		if err != nil {
			return err
		}

		if info == nil {
			m.logger.Warn("custom domain does not exist, no outputs to report", map[string]interface{}{
				"domain": d.GivenDomainName,
			})

			return nil
		}

		return m.reportOutputs(d, *info)
	})
}
