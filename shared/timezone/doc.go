// Package timezone pins every process to one IANA zone so appointment dates,
// slots and audit timestamps agree between the API and the worker.
//
// Call Init once at start up with cfg.App.Timezone; until then UTC is used.
// Now, Today, Parse and Format all work in that zone.
package timezone
