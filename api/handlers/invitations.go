package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sponsorengage/mailer/interfaces"
)

type ContactInviteRequest struct {
	Email              string `json:"email" binding:"required"`
	UserOrganisationID string `json:"userOrganisationId" binding:"required"`
	OrganisationName   string `json:"organisationName" binding:"required"`
	StudyCount         int    `json:"studyCount"`
}

type SendInvitationsRequest struct {
	Invites []ContactInviteRequest `json:"invites" binding:"required"`
}

// SendInvitations dispatches a batch of invitation emails
func SendInvitations(sender interfaces.InvitationSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request SendInvitationsRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		invites := make([]interfaces.ContactInvite, 0, len(request.Invites))
		for _, invite := range request.Invites {
			invites = append(invites, interfaces.ContactInvite{
				Email:              invite.Email,
				UserOrganisationID: invite.UserOrganisationID,
				OrganisationName:   invite.OrganisationName,
				StudyCount:         invite.StudyCount,
			})
		}

		summary, err := sender.SendInvitations(c.Request.Context(), invites)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sent":    summary.Sent,
			"failed":  summary.Failed,
			"invalid": summary.Invalid,
		})
	}
}

// TriggerInvitationMonitor runs one reconciliation pass on demand
func TriggerInvitationMonitor(monitor interfaces.InvitationMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		monitor.MonitorInvitationEmails(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status": "completed",
		})
	}
}
