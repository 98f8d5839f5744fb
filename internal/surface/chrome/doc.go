// Package chrome implements the surface contracts against a live Card
// Conjurer page using chromedp. It mirrors the page's own JavaScript entry
// points (toggleCreatorTabs, loadCard, the autoFrame and load-card-options
// selects) rather than simulating user input where a direct call exists.
package chrome
