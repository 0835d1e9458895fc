package workshop

import "studio-go/internal/artifact"

// 内置工具名，与后端接口保持一致
const (
	ToolRubrica            = "rubrica"
	ToolListaCotejo        = "lista-cotejo"
	ToolCrucigrama         = "crucigrama"
	ToolIdeasActividades   = "ideas-actividades"
	ToolComprensionLectora = "comprension-lectora"
	ToolResumen            = "resumen"
	ToolObjetivos          = "objetivos"
	ToolDiapositivas       = "diapositivas"
	ToolUnidad             = "unidad"
)

// 自然语言主题模板
const (
	crucigramaTemplate = `Crea un crucigrama sobre "{{.tema}}"
{{with .asignatura}} para la asignatura de {{.}}{{end}}
{{with .grado}} dirigido a estudiantes de {{.}}{{end}}
{{with .cantidadPalabras}} con {{.}} palabras{{end}}.
Devuelve un JSON con las claves "across" y "down".`

	ideasTemplate = `Propón {{with .cantidad}}{{.}}{{else}}5{{end}} ideas de actividades sobre "{{.tema}}"
{{with .asignatura}} en {{.}}{{end}}
{{with .grado}} para {{.}}{{end}}
{{with .duracion}}, con una duración aproximada de {{.}}{{end}}.
Cada actividad debe incluir descripcion, tiempoEstimado, formato y materiales.`

	comprensionTemplate = `Genera un texto de lectura sobre "{{.tema}}"
{{with .grado}} para estudiantes de {{.}}{{end}}
con {{with .numeroPreguntas}}{{.}}{{else}}5{{end}} preguntas de comprensión
{{with .tipoPreguntas}} de tipo {{.}}{{end}}.`

	objetivosTemplate = `Redacta objetivos de aprendizaje para el tema "{{.tema}}"
{{with .asignatura}} de {{.}}{{end}}
{{with .grado}} en {{.}}{{end}}
{{with .taxonomia}} usando la taxonomía de {{.}}{{end}}.`
)

// Builtin 内置工具定义
func Builtin() []*Tool {
	return []*Tool{
		{
			Name:  ToolRubrica,
			Title: "Rúbrica",
			Path:  "/rubrica",
			Kind:  artifact.KindJSON,
			Builder: &StructuredBuilder{
				Required: []string{"tema", "grado", "asignatura"},
				Optional: []string{"numeroCriterios", "tipoEvaluacion", "instrucciones"},
				Defaults: Fields{"numeroCriterios": 4},
			},
		},
		{
			Name:  ToolListaCotejo,
			Title: "Lista de cotejo",
			Path:  "/lista-cotejo",
			Kind:  artifact.KindJSON,
			Builder: &StructuredBuilder{
				Required: []string{"tema", "grado", "asignatura"},
				Optional: []string{"numeroCriterios", "instrucciones"},
				Defaults: Fields{"numeroCriterios": 8},
			},
		},
		{
			Name:     ToolCrucigrama,
			Title:    "Crucigrama",
			Path:     "/crucigrama",
			Kind:     artifact.KindJSON,
			Retrying: true,
			Builder:  NewTopicTemplateBuilder(ToolCrucigrama, crucigramaTemplate, "tema"),
		},
		{
			Name:    ToolIdeasActividades,
			Title:   "Ideas de actividades",
			Path:    "/ideas-actividades",
			Kind:    artifact.KindJSON,
			Builder: NewTopicTemplateBuilder(ToolIdeasActividades, ideasTemplate, "tema"),
		},
		{
			Name:    ToolComprensionLectora,
			Title:   "Comprensión lectora",
			Path:    "/comprension-lectora",
			Kind:    artifact.KindJSON,
			Builder: NewTopicTemplateBuilder(ToolComprensionLectora, comprensionTemplate, "tema"),
		},
		{
			Name:  ToolResumen,
			Title: "Resumen",
			Path:  "/resumen",
			Kind:  artifact.KindText,
			Builder: &StructuredBuilder{
				Required: []string{"texto"},
				Optional: []string{"longitud", "grado"},
			},
		},
		{
			Name:    ToolObjetivos,
			Title:   "Objetivos de aprendizaje",
			Path:    "/objetivos",
			Kind:    artifact.KindText,
			Builder: NewTopicTemplateBuilder(ToolObjetivos, objetivosTemplate, "tema"),
		},
		{
			Name:  ToolDiapositivas,
			Title: "Diapositivas",
			Path:  "/diapositivas",
			Kind:  artifact.KindJSON,
			Builder: &StructuredBuilder{
				Required: []string{"tema"},
				Optional: []string{"grado", "asignatura", "numeroDiapositivas", "colorPrimario", "colorSecundario"},
				Defaults: Fields{"numeroDiapositivas": 6},
			},
		},
		{
			Name:  ToolUnidad,
			Title: "Planificador de unidad",
			Path:  "/unidad",
			Kind:  artifact.KindJSON,
			Builder: &StructuredBuilder{
				Required: []string{"nombreUnidad", "asignatura", "nivel", "fechaInicio"},
				Optional: []string{"numeroLecciones", "objetivos", "diasSemana"},
				Defaults: Fields{"numeroLecciones": 5},
			},
		},
	}
}

var builtinNames = map[string]bool{
	ToolRubrica: true, ToolListaCotejo: true, ToolCrucigrama: true,
	ToolIdeasActividades: true, ToolComprensionLectora: true, ToolResumen: true,
	ToolObjetivos: true, ToolDiapositivas: true, ToolUnidad: true,
}

// IsBuiltin 是否内置工具名
func IsBuiltin(name string) bool {
	return builtinNames[name]
}
