package filter

// WellKnownPackages is a curated set of widely-used public packages.
// Filter layer 7 short-circuits these to Exists without running the
// remaining layers. This is intentionally not exhaustive — it exists to
// keep common, unambiguous names (and their dependents' transitive
// imports) out of the candidate set's noise, not to be a registry mirror.
var WellKnownPackages = map[string]bool{
	"react": true, "react-dom": true, "react-router": true, "react-router-dom": true,
	"redux": true, "react-redux": true, "@reduxjs/toolkit": true,
	"vue": true, "vue-router": true, "vuex": true, "pinia": true,
	"angular": true, "@angular/core": true, "@angular/common": true, "@angular/router": true,
	"lodash": true, "lodash.debounce": true, "lodash.merge": true, "underscore": true,
	"axios": true, "node-fetch": true, "cross-fetch": true, "whatwg-fetch": true,
	"moment": true, "dayjs": true, "date-fns": true, "luxon": true,
	"jquery": true, "zepto": true,
	"express": true, "koa": true, "fastify": true, "next": true, "nuxt": true,
	"vite": true, "rollup": true, "esbuild": true, "parcel": true, "parcel-bundler": true,
	// note: "webpack" itself is excluded here — it is handled by the
	// bundler-internal layer (layer 5), not the allowlist.
	"typescript": true, "babel-core": true, "@babel/core": true, "@babel/runtime": true,
	"core-js": true, "regenerator-runtime": true, "tslib": true,
	"classnames": true, "clsx": true, "prop-types": true,
	"styled-components": true, "emotion": true, "@emotion/react": true, "@emotion/styled": true,
	"tailwindcss": true, "bootstrap": true, "@mui/material": true, "antd": true,
	"rxjs": true, "immer": true, "immutable": true, "zustand": true, "mobx": true,
	"uuid": true, "nanoid": true, "shortid": true,
	"chart.js": true, "d3": true, "three": true, "recharts": true,
	"graphql": true, "apollo-client": true, "@apollo/client": true,
	"socket.io-client": true, "ws": true,
	"js-cookie": true, "cookie": true, "qs": true, "query-string": true,
	"yup": true, "zod": true, "ajv": true, "joi": true,
	"i18next": true, "react-i18next": true,
	"framer-motion": true, "gsap": true,
	"sentry": true, "@sentry/browser": true, "@sentry/react": true,
	"posthog-js": true, "mixpanel-browser": true, "amplitude-js": true,
	"stripe": true, "@stripe/stripe-js": true,
	"firebase": true, "@firebase/app": true,
	"jwt-decode": true, "crypto-js": true, "bcryptjs": true,
}
