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

package cmd

import (
	"os"

	"emperror.dev/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/banzaicloud/gateway-domain-manager/internal/domain"
	"github.com/banzaicloud/gateway-domain-manager/internal/platform/log"
)

// Config holds any kind of configuration that comes from the outside world
// and is necessary for running the application.
type Config struct {
	// Log configuration
	Log log.Config

	// AWS holds provider session details.
	AWS struct {
		Region string
	}

	// Provider holds deployment level details of the domain manager.
	Provider ProviderConfig

	// Debug includes raw provider error detail in error output.
	Debug bool

	// Domains is the raw domain list as loaded from the configuration.
	Domains interface{}

	// DomainConfigs is the decoded domain list, populated by Process.
	DomainConfigs []domain.DomainConfig `mapstructure:"-"`
}

// ProviderConfig describes the deployment the domains belong to.
type ProviderConfig struct {
	// StackName is the CloudFormation stack of the deployed APIs.
	StackName string

	// Explicit API ids. When set, the stack is not queried for them.
	RestApiId      string
	HttpApiId      string
	WebsocketApiId string
}

// Process post-processes the configuration after loading (before validation).
func (c *Config) Process() error {
	if c.AWS.Region == "" {
		c.AWS.Region = os.Getenv("AWS_REGION")
	}
	if c.AWS.Region == "" {
		c.AWS.Region = os.Getenv("AWS_DEFAULT_REGION")
	}

	domains, err := domain.ParseDomainConfigs(c.Domains)
	if err != nil {
		return err
	}
	c.DomainConfigs = domains

	return nil
}

// Validate validates the configuration.
func (c Config) Validate() error {
	var err error

	err = errors.Append(err, c.Log.Validate())

	if c.AWS.Region == "" {
		err = errors.Append(err, errors.New("aws region is required"))
	}

	if len(c.DomainConfigs) == 0 {
		err = errors.Append(err, errors.New("at least one custom domain must be configured"))
	}

	return err
}

// Configure configures some defaults in the Viper instance.
func Configure(v *viper.Viper, _ *pflag.FlagSet) {
	// Log configuration
	v.SetDefault("log::format", "logfmt")
	v.SetDefault("log::level", "info")
	v.SetDefault("log::noColor", false)

	// AWS configuration
	v.SetDefault("aws::region", "")

	// Provider configuration
	v.SetDefault("provider::stackName", "")
	v.SetDefault("provider::restApiId", "")
	v.SetDefault("provider::httpApiId", "")
	v.SetDefault("provider::websocketApiId", "")

	v.SetDefault("debug", false)

	v.SetDefault("domains", []interface{}{})
}
