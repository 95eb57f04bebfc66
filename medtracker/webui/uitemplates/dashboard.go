package uitemplates

type DashboardParams struct {
	ActiveUser ActiveUserParams

	TotalPatients  int
	TotalMedicines int64
	ActivePatients int

	RecentPatients []ListPatientsPatient

	UserError string
}

var dashboardText = `{{define "title"}}Panel{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item active" aria-current="page">Panel</li>
{{- end}}

{{define "content"}}
<h1>Hoş geldiniz{{with .ActiveUser.DisplayName}}, {{.}}{{end}}</h1>

{{template "usererror" .}}

<div class="row my-4">
  <div class="col">
    <div class="card"><div class="card-body">
      <h5 class="card-title">Toplam Hasta</h5>
      <p class="card-text fs-2">{{.TotalPatients}}</p>
    </div></div>
  </div>
  <div class="col">
    <div class="card"><div class="card-body">
      <h5 class="card-title">Toplam İlaç</h5>
      <p class="card-text fs-2">{{.TotalMedicines}}</p>
    </div></div>
  </div>
  <div class="col">
    <div class="card"><div class="card-body">
      <h5 class="card-title">Aktif Hasta</h5>
      <p class="card-text fs-2">{{.ActivePatients}}</p>
    </div></div>
  </div>
</div>

<h2>Son Hastalar</h2>
<ul class="list-group">
  {{range .RecentPatients}}
  <li class="list-group-item">
    <a href="{{.ShowPatientLink}}">{{.Name}}</a>
    <span class="text-muted">{{.Email}}</span>
  </li>
  {{else}}
  <li class="list-group-item text-muted">Henüz hasta yok.</li>
  {{end}}
</ul>
<a class="btn btn-link mt-2" href="/yonetim/hastalar">Tüm hastaları gör</a>
{{end}}
`

var DashboardTemplate = page(dashboardText)
