package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
)

func topicForUserType(userType models.UserType) string {
	switch userType {
	case models.UserTypeTrainer:
		return services.TopicTrainers
	case models.UserTypeAdmin:
		return services.TopicAdmins
	default:
		return services.TopicMembers
	}
}

// RegisterFCMToken stores a user's push token and subscribes it to the topic
// for their account type.
func RegisterFCMToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var input struct {
			FCMToken string `json:"fcmToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"message": err.Error()})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Update("fcm_token", input.FCMToken).Error; err != nil {
			c.JSON(500, gin.H{"message": "Failed to register FCM token"})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(500, gin.H{"message": "Failed to get user information"})
			return
		}

		topic := topicForUserType(user.UserType)
		if err := services.SubscribeToTopic(context.Background(), []string{input.FCMToken}, topic); err != nil {
			// Token is stored either way, topic delivery just won't work yet
			c.JSON(200, gin.H{
				"message": "FCM token registered, but topic subscription failed",
				"warning": err.Error(),
			})
			return
		}

		c.JSON(200, gin.H{
			"message": "FCM token registered and subscribed",
			"topic":   topic,
		})
	}
}

// RemoveFCMToken clears a user's push token and unsubscribes it.
func RemoveFCMToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(500, gin.H{"message": "Failed to get user information"})
			return
		}

		if user.FCMToken != "" {
			topic := topicForUserType(user.UserType)
			services.UnsubscribeFromTopic(context.Background(), []string{user.FCMToken}, topic)
		}

		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Update("fcm_token", "").Error; err != nil {
			c.JSON(500, gin.H{"message": "Failed to remove FCM token"})
			return
		}

		c.JSON(200, gin.H{"message": "FCM token removed successfully"})
	}
}

// TestNotification sends a test push to the current user
func TestNotification(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(500, gin.H{"message": "Failed to get user information"})
			return
		}

		if user.FCMToken == "" {
			c.JSON(400, gin.H{"message": "No FCM token registered for this user"})
			return
		}

		payload := services.NotificationPayload{
			Title: "Test Notification",
			Body:  "This is a test notification from CampusFit",
			Data: map[string]interface{}{
				"type":   "test",
				"userId": userID,
			},
		}

		if err := services.SendNotificationToToken(context.Background(), user.FCMToken, payload); err != nil {
			c.JSON(500, gin.H{"message": "Failed to send test notification", "details": err.Error()})
			return
		}

		c.JSON(200, gin.H{"message": "Test notification sent successfully"})
	}
}
