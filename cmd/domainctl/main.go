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

package main

import (
	"fmt"
	"os"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/sagikazarmark/appkit/buildinfo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/banzaicloud/gateway-domain-manager/internal/cmd"
	"github.com/banzaicloud/gateway-domain-manager/internal/common/commonadapter"
	"github.com/banzaicloud/gateway-domain-manager/internal/domain"
	"github.com/banzaicloud/gateway-domain-manager/internal/platform/errorhandler"
	"github.com/banzaicloud/gateway-domain-manager/internal/platform/log"
	"github.com/banzaicloud/gateway-domain-manager/pkg/providers/amazon"
)

// Provisioned by ldflags
// nolint: gochecknoglobals
var (
	version    string
	commitHash string
	buildDate  string
)

func main() {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	p := pflag.NewFlagSet(friendlyAppName, pflag.ExitOnError)

	configure(v, p)

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   appName + " manages custom domains of API gateway deployments.",
		Version: version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("%s version %s (%s) built on %s\n", appName, version, commitHash, buildDate))

	rootCmd.PersistentFlags().AddFlagSet(p)

	operations := []struct {
		use   string
		short string
		run   func(m *domain.Manager) error
	}{
		{
			use:   "create-domains",
			short: "Create the configured custom domains and their DNS records",
			run:   func(m *domain.Manager) error { return m.CreateDomains() },
		},
		{
			use:   "delete-domains",
			short: "Delete the configured custom domains and their DNS records",
			run:   func(m *domain.Manager) error { return m.DeleteDomains() },
		},
		{
			use:   "setup-mappings",
			short: "Bind the deployed APIs to base paths under the custom domains",
			run:   func(m *domain.Manager) error { return m.SetupBasePathMappings() },
		},
		{
			use:   "remove-mappings",
			short: "Remove the API bindings from the custom domains",
			run:   func(m *domain.Manager) error { return m.RemoveBasePathMappings() },
		},
		{
			use:   "update-outputs",
			short: "Report the resolved domain details to the deployment outputs",
			run:   func(m *domain.Manager) error { return m.UpdateOutputs() },
		},
		{
			use:   "summary",
			short: "Print a summary of the configured custom domains",
			run:   func(m *domain.Manager) error { return m.DomainSummaries() },
		},
	}

	for _, op := range operations {
		run := op.run

		rootCmd.AddCommand(&cobra.Command{
			Use:   op.use,
			Short: op.short,
			Run: func(_ *cobra.Command, _ []string) {
				runOperation(v, run)
			},
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)

		os.Exit(1)
	}
}

func runOperation(v *viper.Viper, run func(m *domain.Manager) error) {
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			emperror.Panic(errors.WrapIf(err, "failed to read configuration"))
		}
	}

	var config cmd.Config
	emperror.Panic(errors.WrapIf(v.Unmarshal(&config), "failed to unmarshal configuration"))
	emperror.Panic(config.Process())

	// Create logger (first thing after configuration loading)
	logger := log.NewLogger(config.Log)
	logger = log.WithFields(logger, map[string]interface{}{"application": appName})

	log.SetStandardLogger(logger)

	if err := config.Validate(); err != nil {
		logger.Error(err.Error())

		os.Exit(3)
	}

	errorHandler := errorhandler.New(logger)
	defer emperror.HandleRecover(errorHandler)

	buildInfo := buildinfo.New(version, commitHash, buildDate)

	logger.Info("starting application", buildInfo.Fields())

	sess, err := amazon.NewSession(config.AWS.Region)
	emperror.Panic(err)

	outputs := newOutputRegistry()

	manager := domain.NewManager(
		config.DomainConfigs,
		domain.Settings{
			StackName:      config.Provider.StackName,
			RestAPIID:      config.Provider.RestApiId,
			HTTPAPIID:      config.Provider.HttpApiId,
			WebsocketAPIID: config.Provider.WebsocketApiId,
			Debug:          config.Debug,
		},
		domain.NewClients(sess),
		outputs,
		commonadapter.NewLogger(logger),
	)

	if err := run(manager); err != nil {
		errorHandler.Handle(err)

		os.Exit(1)
	}

	outputs.Report(logger)
}
