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
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// APIType identifies the protocol of the API bound to a custom domain.
type APIType string

// Supported API types.
const (
	APITypeRest      APIType = "REST"
	APITypeHTTP      APIType = "HTTP"
	APITypeWebsocket APIType = "WEBSOCKET"
)

// ParseAPIType parses a raw configuration value into an APIType.
// An empty value defaults to REST.
func ParseAPIType(s string) (APIType, error) {
	switch APIType(strings.ToUpper(s)) {
	case "":
		return APITypeRest, nil
	case APITypeRest:
		return APITypeRest, nil
	case APITypeHTTP:
		return APITypeHTTP, nil
	case APITypeWebsocket:
		return APITypeWebsocket, nil
	}

	return "", errors.Errorf("unsupported API type: %q", s)
}

// logicalResourceID returns the CloudFormation logical resource name the
// deployment tool uses for the API of this type.
func (t APIType) logicalResourceID() (string, error) {
	switch t {
	case APITypeRest:
		return "ApiGatewayRestApi", nil
	case APITypeHTTP:
		return "HttpApi", nil
	case APITypeWebsocket:
		return "WebsocketsApi", nil
	}

	return "", errors.Errorf("unsupported API type: %q", t)
}

// outputSuffix returns the key suffix used when reporting outputs, so that
// multiple API types can coexist in one deployment without key collisions.
func (t APIType) outputSuffix() (string, error) {
	switch t {
	case APITypeRest:
		return "", nil
	case APITypeHTTP:
		return "Http", nil
	case APITypeWebsocket:
		return "Websocket", nil
	}

	return "", errors.Errorf("unsupported API type: %q", t)
}

// EndpointType identifies the resource model of a custom domain.
type EndpointType string

// Supported endpoint types.
const (
	EndpointTypeEdge     EndpointType = "EDGE"
	EndpointTypeRegional EndpointType = "REGIONAL"
)

// ParseEndpointType parses a raw configuration value into an EndpointType.
// An empty value defaults to REGIONAL.
func ParseEndpointType(s string) (EndpointType, error) {
	switch EndpointType(strings.ToUpper(s)) {
	case "":
		return EndpointTypeRegional, nil
	case EndpointTypeEdge:
		return EndpointTypeEdge, nil
	case EndpointTypeRegional:
		return EndpointTypeRegional, nil
	}

	return "", errors.Errorf("unsupported endpoint type: %q", s)
}

// SecurityPolicy is the minimum TLS version accepted on a custom domain.
type SecurityPolicy string

// Supported security policies.
const (
	SecurityPolicyTLS10 SecurityPolicy = "TLS_1_0"
	SecurityPolicyTLS12 SecurityPolicy = "TLS_1_2"
)

// ParseSecurityPolicy parses a raw configuration value into a SecurityPolicy.
// An empty value defaults to TLS 1.2.
func ParseSecurityPolicy(s string) (SecurityPolicy, error) {
	switch SecurityPolicy(strings.ToUpper(s)) {
	case "":
		return SecurityPolicyTLS12, nil
	case SecurityPolicyTLS10:
		return SecurityPolicyTLS10, nil
	case SecurityPolicyTLS12:
		return SecurityPolicyTLS12, nil
	}

	return "", errors.Errorf("unsupported security policy: %q", s)
}

// RecordAction is the change action applied to the Route53 alias records of
// a custom domain.
type RecordAction string

// Supported record actions.
const (
	RecordActionUpsert RecordAction = route53.ChangeActionUpsert
	RecordActionDelete RecordAction = route53.ChangeActionDelete
)

// DomainConfig is the normalized representation of one requested custom
// domain. It is constructed once at the start of an operation and read-only
// afterwards; discovery results are carried in separate result values
// (DomainInfo, APIMapping) instead of being written back here.
type DomainConfig struct {
	// GivenDomainName is the fully qualified domain name to provision.
	GivenDomainName string `mapstructure:"domainName"`

	APIType        APIType
	EndpointType   EndpointType
	SecurityPolicy SecurityPolicy

	// CertificateARN short-circuits certificate resolution when set.
	CertificateARN string `mapstructure:"certificateArn"`

	// CertificateName restricts certificate resolution to an exact
	// certificate domain name match when set.
	CertificateName string

	// HostedZoneID short-circuits hosted zone resolution when set.
	HostedZoneID string `mapstructure:"hostedZoneId"`

	// HostedZonePrivate filters hosted zone candidates by their privacy
	// flag when set.
	HostedZonePrivate *bool

	BasePath string
	Stage    string

	// CreateRoute53Record controls whether alias records are managed for
	// the domain. Defaults to true.
	CreateRoute53Record *bool `mapstructure:"createRoute53Record"`

	// AllowPathMatching loosens mapping lookup to match on base path in
	// addition to API id. Escape hatch for migrating a path between APIs.
	AllowPathMatching bool

	// Enabled excludes the domain from all processing when false.
	// Defaults to true.
	Enabled *bool
}

// ParseDomainConfigs decodes the raw domain list from the configuration into
// normalized DomainConfig values.
func ParseDomainConfigs(raw interface{}) ([]DomainConfig, error) {
	entries := cast.ToSlice(raw)
	configs := make([]DomainConfig, 0, len(entries))

	for _, entry := range entries {
		var config DomainConfig

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &config,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, errors.WrapIf(err, "failed to create domain configuration decoder")
		}

		if err := decoder.Decode(cast.ToStringMap(entry)); err != nil {
			return nil, errors.WrapIf(err, "failed to decode domain configuration")
		}

		if err := config.Process(); err != nil {
			return nil, err
		}

		configs = append(configs, config)
	}

	return configs, nil
}

// Process normalizes the configuration after loading (before validation).
func (d *DomainConfig) Process() error {
	apiType, err := ParseAPIType(string(d.APIType))
	if err != nil {
		return errors.WithDetails(err, "domain", d.GivenDomainName)
	}
	d.APIType = apiType

	endpointType, err := ParseEndpointType(string(d.EndpointType))
	if err != nil {
		return errors.WithDetails(err, "domain", d.GivenDomainName)
	}
	d.EndpointType = endpointType

	securityPolicy, err := ParseSecurityPolicy(string(d.SecurityPolicy))
	if err != nil {
		return errors.WithDetails(err, "domain", d.GivenDomainName)
	}
	d.SecurityPolicy = securityPolicy

	d.GivenDomainName = strings.TrimSuffix(d.GivenDomainName, ".")

	return nil
}

// Validate validates the configuration.
func (d DomainConfig) Validate() error {
	if d.GivenDomainName == "" {
		return errors.New("domainName is required")
	}

	switch d.APIType {
	case APITypeRest, APITypeHTTP, APITypeWebsocket:
	default:
		return errors.Errorf("unsupported API type %q for domain %s", d.APIType, d.GivenDomainName)
	}

	switch d.EndpointType {
	case EndpointTypeEdge, EndpointTypeRegional:
	default:
		return errors.Errorf("unsupported endpoint type %q for domain %s", d.EndpointType, d.GivenDomainName)
	}

	switch d.SecurityPolicy {
	case SecurityPolicyTLS10, SecurityPolicyTLS12:
	default:
		return errors.Errorf("unsupported security policy %q for domain %s", d.SecurityPolicy, d.GivenDomainName)
	}

	if d.EndpointType == EndpointTypeEdge && d.APIType != APITypeRest {
		return errors.Errorf("EDGE endpoint type is not supported for %s APIs (domain %s)", d.APIType, d.GivenDomainName)
	}

	return nil
}

func (d DomainConfig) enabled() bool {
	return d.Enabled == nil || *d.Enabled
}

func (d DomainConfig) recordEnabled() bool {
	return d.CreateRoute53Record == nil || *d.CreateRoute53Record
}

// mappingStage is the stage value sent on base path mappings. HTTP APIs only
// accept the $default stage there, whatever stage was configured.
func (d DomainConfig) mappingStage() string {
	if d.APIType == APITypeHTTP {
		return "$default"
	}

	return d.Stage
}

// DomainInfo is a read-only snapshot of the remote custom domain resource:
// the gateway distribution target the domain aliases to, and the hosted zone
// owning that target. Absence of a DomainInfo means the remote resource does
// not exist.
type DomainInfo struct {
	DomainName   string
	HostedZoneID string
}

// APIMapping is the discovered binding between an API and a base path under
// a custom domain.
type APIMapping struct {
	APIID     string
	MappingID string
	BasePath  string
	Stage     string
}
