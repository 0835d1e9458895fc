package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"studio-go/internal/export"
	"studio-go/internal/planner"
	"studio-go/internal/workshop"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// InitValidator 初始化验证器，并把自定义规则注册到gin的绑定引擎
func InitValidator() {
	validate = validator.New()
	// 与gin共用 binding 标签
	validate.SetTagName("binding")
	registerValidations(validate)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidations(v)
	}
}

func registerValidations(v *validator.Validate) {
	// 注册自定义验证函数
	_ = v.RegisterValidation("export_format", validateExportFormat)
	_ = v.RegisterValidation("tool_name", validateToolName)
	_ = v.RegisterValidation("lesson_date", validateLessonDate)
}

// GetValidator 获取验证器实例
func GetValidator() *validator.Validate {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// validateExportFormat 验证导出格式
func validateExportFormat(fl validator.FieldLevel) bool {
	_, err := export.ParseFormat(fl.Field().String())
	return err == nil
}

// validateToolName 验证工具名
func validateToolName(fl validator.FieldLevel) bool {
	return workshop.IsBuiltin(fl.Field().String())
}

// validateLessonDate 验证 dd/mm/yyyy 日期
func validateLessonDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(planner.DateLayout, fl.Field().String())
	return err == nil
}

// ValidateStruct 验证结构体
func ValidateStruct(s interface{}) error {
	v := GetValidator()
	if err := v.Struct(s); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// FormatValidationError 格式化验证错误
func FormatValidationError(err error) error {
	var messages []string

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			param := e.Param()

			var message string
			switch e.Tag() {
			case "required":
				message = fmt.Sprintf("%s是必填字段", field)
			case "min":
				message = fmt.Sprintf("%s不能小于%s", field, param)
			case "max":
				message = fmt.Sprintf("%s不能大于%s", field, param)
			case "export_format":
				message = fmt.Sprintf("%s必须是 pdf、docx、xlsx、pptx 或 png", field)
			case "tool_name":
				message = fmt.Sprintf("%s不是已知的工具", field)
			case "lesson_date":
				message = fmt.Sprintf("%s必须是 dd/mm/yyyy 格式", field)
			default:
				message = fmt.Sprintf("%s验证失败: %s", field, e.Tag())
			}

			messages = append(messages, message)
		}
	}

	if len(messages) > 0 {
		return errors.New(strings.Join(messages, "; "))
	}

	return err
}
