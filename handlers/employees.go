// handlers/employees.go - Employee admin CRUD
package handlers

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kudos/database"
	"kudos/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func uploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

type EmployeeRequest struct {
	Name       string `json:"name" form:"name"`
	Title      string `json:"title" form:"title"`
	Department string `json:"department" form:"department"`
}

// CreateEmployee adds an employee to the board. Admin only.
func CreateEmployee(c *fiber.Ctx) error {
	var req EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Title = strings.TrimSpace(req.Title)
	req.Department = strings.TrimSpace(req.Department)

	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Name is required and must be a non-empty string"})
	}
	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Title is required and must be a non-empty string"})
	}
	if req.Department == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Department is required and must be a non-empty string"})
	}

	employee := models.Employee{
		Name:       req.Name,
		Title:      req.Title,
		Department: req.Department,
	}

	if err := database.GetDB().Create(&employee).Error; err != nil {
		log.Printf("❌ Failed to create employee: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create employee"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": employee})
}

// GetEmployee returns one employee. Public.
func GetEmployee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid employee ID"})
	}

	var employee models.Employee
	if err := database.GetDB().First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "Employee not found"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch employee"})
	}

	return c.JSON(fiber.Map{"success": true, "data": employee})
}

// UpdateEmployee edits display attributes and optionally replaces the
// avatar image (multipart field "image"). Unset fields keep their current
// values. Admin only.
func UpdateEmployee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid employee ID"})
	}

	db := database.GetDB()
	var employee models.Employee
	if err := db.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "Employee not found"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch employee"})
	}

	var req EmployeeRequest
	_ = c.BodyParser(&req)

	if name := strings.TrimSpace(req.Name); name != "" {
		employee.Name = name
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		employee.Title = title
	}
	if department := strings.TrimSpace(req.Department); department != "" {
		employee.Department = department
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		imageURL, err := saveAvatar(c, employee.ImageURL, file.Filename)
		if err != nil {
			log.Printf("❌ Failed to process image upload: %v", err)
			return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to process image upload"})
		}
		employee.ImageURL = imageURL
	}

	if err := db.Save(&employee).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update employee"})
	}

	return c.JSON(fiber.Map{"success": true, "data": employee})
}

// DeleteEmployee removes an employee along with their ledger and earned
// achievements, all in one transaction. Admin only.
func DeleteEmployee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid employee ID"})
	}

	db := database.GetDB()
	var employee models.Employee
	if err := db.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "Employee not found"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch employee"})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.PointsHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.EmployeeAchievement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&employee).Error
	})
	if err != nil {
		log.Printf("❌ Failed to delete employee %d: %v", employee.ID, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete employee from database"})
	}

	if employee.ImageURL != "" {
		removeAvatarFile(employee.ImageURL)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Employee deleted successfully",
		"data":    employee,
	})
}

// saveAvatar stores the uploaded file under uploadDir with a unique name
// and removes the previous image if there was one.
func saveAvatar(c *fiber.Ctx, oldImageURL, originalName string) (string, error) {
	if err := os.MkdirAll(uploadDir(), 0o755); err != nil {
		return "", err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	filename := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
	if err := c.SaveFile(file, filepath.Join(uploadDir(), filename)); err != nil {
		return "", err
	}

	if oldImageURL != "" {
		removeAvatarFile(oldImageURL)
	}

	return "/uploads/" + filename, nil
}

func removeAvatarFile(imageURL string) {
	path := filepath.Join(uploadDir(), filepath.Base(imageURL))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Failed to remove old image %s: %v", path, err)
	}
}
