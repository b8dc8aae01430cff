// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

// @title Eventhub API
// @version 1.0
// @description Events platform backend: a unified catalog of tech events synced from connpass, Doorkeeper and Peatix plus user-submitted events.
// @description
// @description ## Authentication
// @description
// @description Obtain a JWT from `/auth/register` or `/auth/login` and send it as `Authorization: Bearer <token>`.
// @description
// @description ## Errors
// @description
// @description Every response except the admin sync trigger uses the envelope
// @description `{"success": false, "error": {"code": "...", "message": "..."}, "meta": {...}}`.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/eventhub/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /auth/login.
//
// @tag.name Health
// @tag.description Liveness and readiness probes
//
// @tag.name Auth
// @tag.description Registration, login and logout
//
// @tag.name Events
// @tag.description Event catalog and live feed
//
// @tag.name Favorites
// @tag.description Per-user favorite events
//
// @tag.name Comments
// @tag.description Event comments and moderation reports
//
// @tag.name Users
// @tag.description The caller's profile
//
// @tag.name Admin
// @tag.description External sync control (admin role)
package main
