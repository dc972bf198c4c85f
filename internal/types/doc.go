/*
Package types defines the data model shared across kwintel.

# Submission

SubmissionInput is a tagged union: a text body or a file blob, never both,
plus the numeric Params (top N, n-gram range) sent to the service.

# Results

ExtractionResult mirrors the JSON body returned by the extraction service.
All fields are optional; a missing list decodes to nil and renders as empty.

# Notifications

Notification carries one transient message. Only the Notification Center
creates them; everything else reads them.

# State

SubmissionState is owned by the submission controller. A result is only
attached while the state is StateSucceeded.
*/
package types
