package templates

const PlotTemplate = `% Generated on {{.GeneratedDate}}
% {{.Title}} ({{.MetricName}}, trimmed {{.Confidence}}%)
\begin{tikzpicture}
\begin{axis}[
    width=\linewidth,
    height=0.66\linewidth,
    ylabel={\textbf{ {{- .YLabel -}} }},
{{- if .Log}}
    ymode=log,
    log basis y=10,
{{- end}}
    xtick={ {{- .XTicks -}} },
    xticklabels={ {{- .XTickLabels -}} },
    x tick label style={rotate=90, anchor=east},
    boxplot/draw direction=y,
    legend style={font=\footnotesize},
    legend pos=north west,
]
{{- range .Boxes}}
% {{.Label}} / {{.Environment}} / {{.StressName}}
\addplot+[
    boxplot prepared={
        draw position={{.Position}},
        lower whisker={{.Min}},
        lower quartile={{.Q1}},
        median={{.Median}},
        upper quartile={{.Q3}},
        upper whisker={{.Max}},
        average={{.Mean}},
    },
    boxplot/every average/.style={/tikz/mark=*, mark options={fill=red, draw=black}},
    boxplot/every median/.style={draw=orange, very thick},
    draw=black,
    fill={{.FillColor}},
{{- if .Pattern}}
    postaction={pattern={{.Pattern}}},
{{- end}}
{{- if .Stress}}
    postaction={pattern={{.StressPattern}}},
{{- end}}
    solid,
] coordinates {};
{{- end}}
\end{axis}
\end{tikzpicture}
`

type PlotData struct {
	GeneratedDate string
	Title         string
	MetricName    string
	Confidence    int
	YLabel        string
	Log           bool
	XTicks        string
	XTickLabels   string
	Boxes         []Box
}

type Box struct {
	Label         string
	Environment   string
	StressName    string
	Stress        bool
	Position      string
	Min           string
	Q1            string
	Median        string
	Q3            string
	Max           string
	Mean          string
	FillColor     string
	Pattern       string
	StressPattern string
}
