// Copyright 2024 reelrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reelrec-io/reelrec/base/log"
	"github.com/reelrec-io/reelrec/config"
	"github.com/reelrec-io/reelrec/server"
	"github.com/reelrec-io/reelrec/storage/data"
)

var version = "0.1.0"

var reelrecCommand = &cobra.Command{
	Use:   "reelrec",
	Short: "The reelrec recommendation server.",
	Run: func(cmd *cobra.Command, args []string) {
		// show version
		showVersion, _ := cmd.PersistentFlags().GetBool("version")
		if showVersion {
			fmt.Println("reelrec version", version)
			return
		}
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)
		// load config
		configPath, _ := cmd.PersistentFlags().GetString("config")
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		// connect to data store
		dataClient, err := data.Open(conf.Database.DataStore, conf.Database.TablePrefix)
		if err != nil {
			log.Logger().Fatal("failed to connect to data store",
				zap.String("database", log.RedactDBURL(conf.Database.DataStore)), zap.Error(err))
		}
		if err = dataClient.Init(); err != nil {
			log.Logger().Fatal("failed to init data store", zap.Error(err))
		}
		log.Logger().Info("connected to data store",
			zap.String("database", log.RedactDBURL(conf.Database.DataStore)))
		// start server
		s := server.NewRestServer(dataClient, conf)
		s.StartHttpServer()
	},
}

func init() {
	reelrecCommand.PersistentFlags().BoolP("version", "v", false, "reelrec version")
	reelrecCommand.PersistentFlags().StringP("config", "c", "config.toml", "configuration file path")
	reelrecCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	log.AddFlags(reelrecCommand.PersistentFlags())
}

func main() {
	if err := reelrecCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
