package actions

// A list of status codes used inside the application. For more details see: https://httpstatuses.com/

// OK - success
const OK = 200

// Created - resource created
const Created = 201

// BadRequest - sent when a bad request was submitted by the client
const BadRequest = 400

// Unauthorized - when the caller did not authenticate before attempting to access the resource
const Unauthorized = 401

// AccessDenied - when the caller does not have access to the resource
const AccessDenied = 403

// NotFound - the resource identified by the given ID does not exist
const NotFound = 404

// ValidationFailed - the request did not pass field verification
const ValidationFailed = 422

// TooManyRequests - the client exceeded its request budget for the window
const TooManyRequests = 429

// ServerError - internal server error
const ServerError = 500
