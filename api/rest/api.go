// Copyright 2023 ProTrace Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/ziflex/lecho/v2"
)

// API wires the controller's handlers into an Echo server with request
// logging through the given logger.
func API(ctrl *Controller, log zerolog.Logger) *echo.Echo {

	elog := lecho.From(log)

	svr := echo.New()
	svr.HideBanner = true
	svr.HidePort = true
	svr.Logger = elog
	svr.Use(lecho.Middleware(lecho.Config{Logger: elog}))

	svr.POST("/fingerprints", ctrl.Fingerprint)
	svr.GET("/roots/latest", ctrl.Latest)
	svr.GET("/manifests/:root", ctrl.Manifest)
	svr.GET("/manifests/:root/proofs/:index", ctrl.Proof)
	svr.POST("/verify", ctrl.Verify)
	svr.POST("/duplicates", ctrl.Duplicates)

	return svr
}
