// Package hydrate swaps server-rendered placeholder elements for rendered
// components.
//
// A placeholder carries an element id, the hash of a registered component and
// a JSON property bag:
//
//	<div id="..." data-hydrate="XljTMEmS2ZfGU9Is2UkhAQ==" data-props='{"title":"Hello"}'></div>
//
// Requests are routed through a Chain of handlers. The Dispatcher handles the
// hashes it knows by rendering the component after the placeholder and then
// removing the placeholder; everything else goes to the handler installed
// before it. Hydrator drives a whole page through such a chain at build time
// and leaves unknown or client-only placeholders for the browser bundle, which
// runs the same dispatch logic against the live DOM.
package hydrate
