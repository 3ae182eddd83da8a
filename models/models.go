package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User, RefreshToken from user.go
// - FreelanceRequest, Recommendation, RecommendationResponse from request.go
// - HireRecord from hire.go
// - Interview, InterviewInvitation, InterviewFeedback from interview.go
// - Notification from notification.go

// Database schema overview:
// 1. users - Associates and freelancers, managed by cookie-based authentication
//    (refresh_tokens holds their hashed session refresh tokens)
// 2. freelance_requests - Work requests posted by associates
// 3. recommendations - Platform decisions pairing a freelancer with a request
// 4. recommendation_responses - Single response state per (request, freelancer) pair
// 5. hire_records - Active and historical engagements, at most one active per freelancer
// 6. interviews - Scheduled meetings for a (request, freelancer) pair
// 7. interview_invitations - The freelancer-facing accept/decline gate per interview
// 8. interview_feedbacks - One evaluator's assessment of a completed interview
// 9. notifications - Immediate and deferred per-user notifications
